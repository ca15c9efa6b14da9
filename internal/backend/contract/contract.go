// Package contract holds the types shared between the backend package
// (the Backend Policy contract and factory) and its concrete
// implementations (cuda, npu, sim). It exists purely to break the import
// cycle that would otherwise result from the implementations needing the
// contract types while the backend package's factory needs to import the
// implementations.
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"
)

// ErrBadHandle is returned by Launch or SharedMemory when the handle did
// not come from a LoadArtifact call on the same backend instance.
var ErrBadHandle = errors.New("backend: handle not recognized by this backend")

// KernelHandle is an opaque, backend-specific loaded-function reference
// (a CUfunction for CUDA, an Ascend rtFunction-equivalent for NPU, or an
// in-process token for the simulator). Callers never inspect it; they
// only pass it back into Launch and SharedMemory.
type KernelHandle any

// LaunchRequest carries everything a Launch call needs. GPU-class
// backends consume Args (one pointer per argument slot); NPU-class
// backends consume Payload and Signature instead, building their own
// packed buffer from the raw bytes (spec §4.1.2).
type LaunchRequest struct {
	GridX, GridY, GridZ uint32
	NumWarps            uint32
	Stream              uintptr
	Args                []unsafe.Pointer
	Payload             []byte
	Signature           string
}

// Backend is the Go shape of the original's BackendPolicy concept. Every
// concrete accelerator family (GPU-class, NPU-class, or the hardware-free
// simulator) implements it, selected at build time by the factory in
// the backend package.
type Backend interface {
	// EnsureContext verifies (and lazily creates, if the backend allows
	// it) a device context for the calling goroutine.
	EnsureContext() error

	// CurrentDeviceIndex reports which device the current context is
	// bound to.
	CurrentDeviceIndex() (int, error)

	// WarpSize reports the thread count per warp this backend's block
	// dimensions are computed from (spec §4.2: block = warps * warp_size,
	// 1, 1). GPU-class backends report 32; NPU-class backends report 1
	// (spec §4.1.2), collapsing the block dimension to the grid product.
	WarpSize() uint32

	// LoadArtifact loads a compiled specialization's binary from the
	// directory dir (named kernelName within it) and returns a handle
	// ready for Launch. Implementations must cache by (dir, kernelName)
	// so a given artifact is loaded at most once per process (spec §8
	// property 4); the metadata sidecar (spec §6) is read internally,
	// the same way the teacher's CUDA module cache reads its JSON file
	// as part of load_kernel.
	LoadArtifact(dir, kernelName string) (KernelHandle, error)

	// SharedMemory reports the static shared memory, in bytes, the
	// artifact behind handle declared in its metadata. The Kernel
	// Handle queries this on every launch, mirroring the original's
	// get_shared_memory.
	SharedMemory(handle KernelHandle) (uint32, error)

	// Launch dispatches one kernel invocation against an already-loaded
	// handle.
	Launch(handle KernelHandle, req LaunchRequest) error
}

// ArgLayoutEntry describes one user argument's declared type, as read
// from an artifact's arg_layout metadata (spec §4.1.2 option (a), §6).
// Entries with Type == "constexpr" are skipped by NPU-class argument
// packing.
type ArgLayoutEntry struct {
	Type string `json:"type"`
}

// Metadata is the compiled specialization's on-disk descriptor, grounded
// on CudaKernelMetadata (cuda_backend.h) and extended with the NPU-class
// fields npu_backend.h reads from the same JSON sidecar (spec §6).
type Metadata struct {
	Shared  uint32 `json:"shared"`
	MixMode string `json:"mix_mode"`
	Target  struct {
		Arch uint32 `json:"arch"`
	} `json:"target"`
	ArgLayout []ArgLayoutEntry `json:"arg_layout"`
}

// ErrMetadataNotFound is returned by LoadMetadata when an artifact
// directory has no <kernelName>.json sidecar.
var ErrMetadataNotFound = fmt.Errorf("backend: metadata file not found")

// LoadMetadata reads and parses "<dir>/<kernelName>.json", filling in the
// spec-mandated defaults for fields NPU-class artifacts may omit: Shared
// defaults to 0, MixMode defaults to "mix".
func LoadMetadata(dir, kernelName string) (Metadata, error) {
	path := filepath.Join(dir, kernelName+".json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Metadata{}, fmt.Errorf("%w: %s", ErrMetadataNotFound, path)
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("backend: reading metadata %s: %w", path, err)
	}

	meta := Metadata{MixMode: "mix"}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("backend: parsing metadata %s: %w", path, err)
	}
	if meta.MixMode == "" {
		meta.MixMode = "mix"
	}
	return meta, nil
}

// FindArtifactFile returns the first existing "<dir>/<kernelName><ext>"
// among candidates, in order. NPU-class artifacts accept several
// extensions (spec §6: ".npubin", ".o", ".ttadapter", ".bin").
func FindArtifactFile(dir, kernelName string, candidates []string) (string, error) {
	for _, ext := range candidates {
		p := filepath.Join(dir, kernelName+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: no artifact file for %s in %s (tried %v)", ErrMetadataNotFound, kernelName, dir, candidates)
}
