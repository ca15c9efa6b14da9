package jit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignedTo16(t *testing.T) {
	assert.False(t, alignedTo16(0))
	assert.False(t, alignedTo16(8))
	assert.True(t, alignedTo16(16))
	assert.True(t, alignedTo16(32))
	assert.False(t, alignedTo16(33))
}

func TestAlignment(t *testing.T) {
	assert.Equal(t, 1, Alignment(1))
	assert.Equal(t, 2, Alignment(2))
	assert.Equal(t, 4, Alignment(4))
	assert.Equal(t, 16, Alignment(16))
	assert.Equal(t, 16, Alignment(48))
}
