//go:build cuda
// +build cuda

package backend

import (
	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/backend/cuda"
)

// New constructs the GPU-class backend. Built only with the cuda tag since
// the CUDA Driver API bindings require cgo against a CUDA toolkit install.
func New(logger *zap.Logger) Backend {
	return cuda.New(logger)
}
