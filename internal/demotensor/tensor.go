// Package demotensor is a minimal jit.TensorLike over a host float32
// slice, used by the cmd/tilejit demo commands and test/integration to
// exercise the classifier and the sim backend without a real device allocator — tensor
// allocation is explicitly out of scope (spec §1 Non-goals), so this
// stands in for whatever allocator a real integration would supply.
package demotensor

import (
	"unsafe"

	"github.com/tilejit/runtime/internal/jit"
)

// Float32 wraps a host []float32 so it satisfies jit.TensorLike.
type Float32 struct {
	data []float32
}

// NewFloat32 wraps data without copying it.
func NewFloat32(data []float32) *Float32 {
	return &Float32{data: data}
}

// Dtype reports fp32, the only element type the demo kernels use.
func (f *Float32) Dtype() jit.Dtype { return jit.DtypeFP32 }

// DataPtr returns the address of the slice's backing array.
func (f *Float32) DataPtr() uintptr {
	if len(f.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&f.data[0]))
}

// Slice returns the wrapped data.
func (f *Float32) Slice() []float32 { return f.data }

// Len reports the element count.
func (f *Float32) Len() int { return len(f.data) }
