// Package backend defines the Backend Policy contract every accelerator
// family implements, grounded on the original's BackendPolicy concept
// (backend_policy.h): a fixed set of static operations any concrete
// backend must provide so the rest of the runtime never branches on
// vendor.
//
// The contract types themselves live in the contract subpackage so that
// the concrete implementations (cuda, npu, sim) can depend on them
// without importing this package back, since this package's factory
// (New) must import the implementations.
package backend

import (
	"github.com/tilejit/runtime/internal/backend/contract"
)

// ErrBadHandle is returned by Launch or SharedMemory when the handle did
// not come from a LoadArtifact call on the same backend instance.
var ErrBadHandle = contract.ErrBadHandle

// KernelHandle is an opaque, backend-specific loaded-function reference
// (a CUfunction for CUDA, an Ascend rtFunction-equivalent for NPU, or an
// in-process token for the simulator). Callers never inspect it; they
// only pass it back into Launch and SharedMemory.
type KernelHandle = contract.KernelHandle

// LaunchRequest carries everything a Launch call needs. GPU-class
// backends consume Args (one pointer per argument slot); NPU-class
// backends consume Payload and Signature instead, building their own
// packed buffer from the raw bytes (spec §4.1.2).
type LaunchRequest = contract.LaunchRequest

// Backend is the Go shape of the original's BackendPolicy concept. Every
// concrete accelerator family (GPU-class, NPU-class, or the hardware-free
// simulator) implements it, selected at build time by the factory in
// this package.
type Backend = contract.Backend
