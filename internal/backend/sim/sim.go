// Package sim implements a hardware-free Backend for tests and demos. It
// satisfies the same contract a real GPU-class or NPU-class backend would
// (internal/backend/contract.Backend), recording every load and launch so tests can
// assert at-most-once compile/load semantics without an accelerator, the
// way the teacher's CPUBackend stands in for CUDA when no GPU is present.
package sim

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/backend/contract"
	"github.com/tilejit/runtime/internal/metrics"
)

// Backend is the simulator. Every method is safe for concurrent use.
type Backend struct {
	logger   *zap.Logger
	warpSize uint32

	mu      sync.Mutex
	modules map[string]*loadedModule
	loads   map[string]int
	launchC int
}

type loadedModule struct {
	dir, kernelName string
	meta            contract.Metadata
}

// New constructs a Backend. logger may be nil, in which case a no-op
// logger is used.
func New(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		logger:   logger,
		warpSize: 32,
		modules:  make(map[string]*loadedModule),
		loads:    make(map[string]int),
	}
}

// NewWithWarpSize constructs a Backend that reports warpSize from
// WarpSize, for tests exercising NPU-class geometry (warp_size 1)
// against the simulator.
func NewWithWarpSize(logger *zap.Logger, warpSize uint32) *Backend {
	b := New(logger)
	b.warpSize = warpSize
	return b
}

func moduleKey(dir, kernelName string) string {
	return dir + "::" + kernelName
}

// EnsureContext is a no-op: the simulator has no device context.
func (b *Backend) EnsureContext() error {
	return nil
}

// CurrentDeviceIndex always reports device 0.
func (b *Backend) CurrentDeviceIndex() (int, error) {
	return 0, nil
}

// WarpSize reports the configured warp size, 32 by default.
func (b *Backend) WarpSize() uint32 {
	return b.warpSize
}

// LoadArtifact reads the artifact's metadata sidecar and records a load.
// Loading the same (dir, kernelName) pair again returns the cached handle
// without incrementing the load counter, mirroring the teacher's CUDA
// module cache.
func (b *Backend) LoadArtifact(dir, kernelName string) (contract.KernelHandle, error) {
	key := moduleKey(dir, kernelName)

	b.mu.Lock()
	defer b.mu.Unlock()

	if mod, ok := b.modules[key]; ok {
		return mod, nil
	}

	meta, err := contract.LoadMetadata(dir, kernelName)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	mod := &loadedModule{dir: dir, kernelName: kernelName, meta: meta}
	b.modules[key] = mod
	b.loads[key]++

	metrics.BackendLoadsTotal.WithLabelValues("sim").Inc()
	b.logger.Debug("sim: loaded artifact", zap.String("dir", dir), zap.String("kernel", kernelName))
	return mod, nil
}

// SharedMemory returns the shared-memory requirement recorded in the
// artifact's metadata sidecar.
func (b *Backend) SharedMemory(handle contract.KernelHandle) (uint32, error) {
	mod, ok := handle.(*loadedModule)
	if !ok {
		return 0, fmt.Errorf("sim: %w", contract.ErrBadHandle)
	}
	return mod.meta.Shared, nil
}

// Launch validates the handle and records the call; it performs no actual
// device work.
func (b *Backend) Launch(handle contract.KernelHandle, req contract.LaunchRequest) error {
	mod, ok := handle.(*loadedModule)
	if !ok {
		return fmt.Errorf("sim: %w: handle is not a module loaded by this backend", contract.ErrBadHandle)
	}

	b.mu.Lock()
	b.launchC++
	b.mu.Unlock()

	metrics.LaunchesTotal.WithLabelValues("sim", "ok").Inc()
	b.logger.Debug("sim: launch",
		zap.String("kernel", mod.kernelName),
		zap.Uint32("gridX", req.GridX), zap.Uint32("gridY", req.GridY), zap.Uint32("gridZ", req.GridZ),
		zap.Uint32("numWarps", req.NumWarps),
		zap.Int("argSlots", len(req.Args)),
		zap.Int("payloadBytes", len(req.Payload)),
	)
	return nil
}

// LoadCount reports how many times the artifact identified by (dir, name)
// was actually loaded (as opposed to served from cache). Tests use this to
// assert at-most-once load semantics (spec §8 property 4).
func (b *Backend) LoadCount(dir, name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loads[moduleKey(dir, name)]
}

// LaunchCount reports how many Launch calls this backend has served.
func (b *Backend) LaunchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.launchC
}
