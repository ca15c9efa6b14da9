//go:build !cuda && !npu
// +build !cuda,!npu

package backend

import (
	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/backend/sim"
)

// New constructs the hardware-free simulator backend. This is the default
// build: compiling without cuda or npu never requires a vendor driver or
// toolkit to be present.
func New(logger *zap.Logger) Backend {
	return sim.New(logger)
}
