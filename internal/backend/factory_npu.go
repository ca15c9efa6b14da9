//go:build npu
// +build npu

package backend

import (
	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/backend/npu"
)

// New constructs the NPU-class backend. Built only with the npu tag since
// the Ascend acl/rt bindings require cgo against the CANN toolkit install.
func New(logger *zap.Logger) Backend {
	return npu.New(logger)
}
