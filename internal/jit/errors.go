package jit

import "errors"

// Error kinds per spec §7. Each is a sentinel checked with errors.Is; the
// diagnostic detail is attached by wrapping with %w at the call site, the
// way the teacher's backends wrap driver error strings.
//
// ErrArtifactNotFound, ErrArchMismatch and ErrResourceLimitExceeded are
// declared but not returned by this package: every LoadArtifact failure,
// including a missing binary, an architecture mismatch or a shared-memory
// request above the device limit, reaches callers wrapped in ErrDriverLoad
// with the backend's message attached.
var (
	ErrCompiler              = errors.New("jit: compiler bridge failed")
	ErrArtifactNotFound      = errors.New("jit: artifact binary not found")
	ErrArchMismatch          = errors.New("jit: device architecture mismatch")
	ErrResourceLimitExceeded = errors.New("jit: resource limit exceeded")
	ErrDriverLoad            = errors.New("jit: driver load failed")
	ErrKernelLaunch          = errors.New("jit: kernel launch failed")
	ErrUnsupportedArgument   = errors.New("jit: unsupported argument")
	ErrSignatureMismatch     = errors.New("jit: static signature mismatch")
)
