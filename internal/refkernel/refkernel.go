// Package refkernel computes host-side reference results for the demo
// kernels dispatched by cmd/tilejit and test/integration, the same role
// gonum/mat plays in the teacher's
// MatrixMultiplicationChallenger: an independent implementation the
// simulated backend's output is checked against, grounded on
// original_source/examples/pointwise/add.py (element-wise add) and
// original_source/examples/reduce/sum_op.cpp (reduction sum).
package refkernel

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ReferenceAdd computes x+y element-wise, mirroring binary_pointwise_kernel
// (add.py): X, Y and Out are the same length, no masking needed since this
// is a host-side reference rather than a tiled device kernel.
func ReferenceAdd(x, y []float32) ([]float32, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("refkernel: length mismatch: len(x)=%d len(y)=%d", len(x), len(y))
	}

	xf := toFloat64(x)
	yf := toFloat64(y)
	floats.Add(xf, yf)

	return toFloat32(xf), nil
}

// ReferenceSum computes the full reduction of x, mirroring sum_op.cpp's
// single-axis sum over the whole tensor.
func ReferenceSum(x []float32) float64 {
	return floats.Sum(toFloat64(x))
}

func toFloat64(xs []float32) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = float64(v)
	}
	return out
}

func toFloat32(xs []float64) []float32 {
	out := make([]float32, len(xs))
	for i, v := range xs {
		out[i] = float32(v)
	}
	return out
}
