package backend

import (
	"github.com/tilejit/runtime/internal/backend/contract"
)

// ArgLayoutEntry describes one user argument's declared type, as read
// from an artifact's arg_layout metadata (spec §4.1.2 option (a), §6).
// Entries with Type == "constexpr" are skipped by NPU-class argument
// packing.
type ArgLayoutEntry = contract.ArgLayoutEntry

// Metadata is the compiled specialization's on-disk descriptor, grounded
// on CudaKernelMetadata (cuda_backend.h) and extended with the NPU-class
// fields npu_backend.h reads from the same JSON sidecar (spec §6).
type Metadata = contract.Metadata

// ErrMetadataNotFound is returned by LoadMetadata when an artifact
// directory has no <kernelName>.json sidecar.
var ErrMetadataNotFound = contract.ErrMetadataNotFound

// LoadMetadata reads and parses "<dir>/<kernelName>.json", filling in the
// spec-mandated defaults for fields NPU-class artifacts may omit: Shared
// defaults to 0, MixMode defaults to "mix".
func LoadMetadata(dir, kernelName string) (Metadata, error) {
	return contract.LoadMetadata(dir, kernelName)
}

// FindArtifactFile returns the first existing "<dir>/<kernelName><ext>"
// among candidates, in order. NPU-class artifacts accept several
// extensions (spec §6: ".npubin", ".o", ".ttadapter", ".bin").
func FindArtifactFile(dir, kernelName string, candidates []string) (string, error) {
	return contract.FindArtifactFile(dir, kernelName, candidates)
}
