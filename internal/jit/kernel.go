package jit

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/tilejit/runtime/internal/backend"
	"github.com/tilejit/runtime/internal/metrics"
)

// KernelHandle is the runtime proxy for one compiled specialization on
// one device: a (dir, entryName) pair plus the lazily-acquired
// backend-native handle. It is the Go shape of the original's
// TritonKernel/TritonKernelImpl.
//
// State machine: {Unloaded -> Loaded}, one-way, triggered only by
// Launch. A failed load leaves the handle Unloaded; the next Launch call
// retries — there is no negative caching (spec §4.2).
type KernelHandle struct {
	dir       string
	entryName string
	be        backend.Backend

	mu       sync.Mutex
	loaded   bool
	loadedAs backend.KernelHandle
}

// NewKernelHandle constructs a handle over a compiled artifact directory.
// It starts Unloaded; no backend call happens until the first Launch.
func NewKernelHandle(dir, entryName string, be backend.Backend) *KernelHandle {
	return &KernelHandle{dir: dir, entryName: entryName, be: be}
}

// IsLoaded reports whether this handle has successfully loaded its
// artifact at least once.
func (k *KernelHandle) IsLoaded() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.loaded
}

func (k *KernelHandle) ensureLoaded() (backend.KernelHandle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.loaded {
		return k.loadedAs, nil
	}

	h, err := k.be.LoadArtifact(k.dir, k.entryName)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s/%s: %v", ErrDriverLoad, k.dir, k.entryName, err)
	}

	k.loadedAs = h
	k.loaded = true
	return h, nil
}

// Launch loads the artifact under the load-once guard if necessary, then
// forwards to the backend. Block dimensions (spec §4.2: warps *
// warp_size, 1, 1) are derived by the backend from NumWarps and its own
// WarpSize, since only the backend knows which family's convention
// applies. ptrs is the void** argument array for a GPU-class backend;
// payload and dynSignature let an NPU-class backend pack its own buffer.
func (k *KernelHandle) Launch(stream uintptr, gridX, gridY, gridZ, numWarps uint32, ptrs []unsafe.Pointer, payload []byte, dynSignature string) error {
	h, err := k.ensureLoaded()
	if err != nil {
		return err
	}

	shared, err := k.be.SharedMemory(h)
	if err != nil {
		return fmt.Errorf("%w: querying shared memory for %s/%s: %v", ErrKernelLaunch, k.dir, k.entryName, err)
	}
	metrics.SharedMemoryBytes.WithLabelValues(k.entryName).Set(float64(shared))

	req := backend.LaunchRequest{
		GridX: gridX, GridY: gridY, GridZ: gridZ,
		NumWarps:  numWarps,
		Stream:    stream,
		Args:      ptrs,
		Payload:   payload,
		Signature: dynSignature,
	}

	if err := k.be.Launch(h, req); err != nil {
		return fmt.Errorf("%w: %s/%s: %v", ErrKernelLaunch, k.dir, k.entryName, err)
	}
	return nil
}
