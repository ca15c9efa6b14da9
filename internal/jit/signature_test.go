package jit

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterBufferPushAlignsAndRecordsOffsets(t *testing.T) {
	var buf ParameterBuffer

	buf.pushBool(true)      // offset 0, 1 byte
	buf.pushInt32(42)       // must align to 4 -> offset 4
	buf.pushInt64(99)       // must align to 8 -> offset 8
	buf.appendGlobalScratch() // uintptr, offset 16

	require.Equal(t, 4, buf.Size())

	ptrs := buf.Pointers()
	require.Len(t, ptrs, 4)

	bytes := buf.Bytes()
	assert.Equal(t, byte(1), bytes[0])
	assert.Equal(t, int32(42), *(*int32)(unsafe.Pointer(&bytes[4])))
	assert.Equal(t, int64(99), *(*int64)(unsafe.Pointer(&bytes[8])))
}

func TestNextMultipleOf(t *testing.T) {
	assert.Equal(t, 0, nextMultipleOf(0, 8))
	assert.Equal(t, 8, nextMultipleOf(1, 8))
	assert.Equal(t, 8, nextMultipleOf(8, 8))
	assert.Equal(t, 16, nextMultipleOf(9, 8))
}

func TestJoinSignature(t *testing.T) {
	assert.Equal(t, "", joinSignature(nil))
	assert.Equal(t, "i32", joinSignature([]string{"i32"}))
	assert.Equal(t, "*fp32:16,i64,nullopt", joinSignature([]string{"*fp32:16", "i64", "nullopt"}))
}
