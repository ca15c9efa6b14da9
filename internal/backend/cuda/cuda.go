//go:build cuda
// +build cuda

// Package cuda implements the GPU-class Backend against the CUDA Driver
// API, grounded on original_source/include/triton_jit/backends/cuda_backend.h:
// module loading with architecture verification, the >48KiB shared-memory
// opt-in dance, and a module cache keyed by dir::kernel_name.
package cuda

/*
#cgo LDFLAGS: -lcuda
#include <cuda.h>
#include <stdlib.h>

static const char* driverErrorString(CUresult r) {
	const char* s = 0;
	cuGetErrorString(r, &s);
	return s ? s : "unknown CUDA driver error";
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/backend/contract"
)

const (
	warpSize           = 32
	maxSharedOptinAttr = C.CU_DEVICE_ATTRIBUTE_MAX_SHARED_MEMORY_PER_BLOCK_OPTIN
	maxSharedTotalAttr = C.CU_DEVICE_ATTRIBUTE_MAX_SHARED_MEMORY_PER_MULTIPROCESSOR
	sharedStaticAttr   = C.CU_FUNC_ATTRIBUTE_SHARED_SIZE_BYTES
	dynSharedAttr      = C.CU_FUNC_ATTRIBUTE_MAX_DYNAMIC_SHARED_SIZE_BYTES
	largeSharedCutoff  = 49152
)

func driverErr(res C.CUresult) error {
	if res == C.CUDA_SUCCESS {
		return nil
	}
	return fmt.Errorf("%s", C.GoString(C.driverErrorString(res)))
}

type moduleData struct {
	module C.CUmodule
	fn     C.CUfunction
	meta   contract.Metadata
}

// Backend is the GPU-class Backend Policy implementation. Every method is
// safe for concurrent use.
type Backend struct {
	logger *zap.Logger

	mu      sync.Mutex
	modules map[string]*moduleData
}

// New constructs a cuda Backend. logger may be nil.
func New(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if res := C.cuInit(0); res != C.CUDA_SUCCESS {
		logger.Warn("cuda: cuInit failed", zap.Error(driverErr(res)))
	}
	return &Backend{logger: logger, modules: make(map[string]*moduleData)}
}

// WarpSize reports the CUDA warp size, 32.
func (b *Backend) WarpSize() uint32 { return warpSize }

// EnsureContext verifies a current context exists, creating a default one
// on device 0 if not — PyTorch-style integrations normally already have
// one.
func (b *Backend) EnsureContext() error {
	var ctx C.CUcontext
	if res := C.cuCtxGetCurrent(&ctx); res != C.CUDA_SUCCESS || ctx == nil {
		b.logger.Warn("cuda: no context found, creating default context")
		var device C.CUdevice
		if res := C.cuDeviceGet(&device, 0); res != C.CUDA_SUCCESS {
			return fmt.Errorf("cuDeviceGet: %w", driverErr(res))
		}
		if res := C.cuCtxCreate(&ctx, 0, device); res != C.CUDA_SUCCESS {
			return fmt.Errorf("cuCtxCreate: %w", driverErr(res))
		}
	}
	return nil
}

// CurrentDeviceIndex returns the device bound to the current context.
func (b *Backend) CurrentDeviceIndex() (int, error) {
	var device C.CUdevice
	if res := C.cuCtxGetDevice(&device); res != C.CUDA_SUCCESS {
		return 0, fmt.Errorf("cuCtxGetDevice: %w", driverErr(res))
	}
	return int(device), nil
}

func moduleKey(dir, kernelName string) string {
	return dir + "::" + kernelName
}

// LoadArtifact loads "<dir>/<kernelName>.cubin", verifying the device's
// compute capability matches the artifact's declared target.arch
// (major*10+minor, spec §4.1.1) and configuring shared memory above the
// 48KiB static limit via the opt-in attribute dance.
func (b *Backend) LoadArtifact(dir, kernelName string) (contract.KernelHandle, error) {
	key := moduleKey(dir, kernelName)

	b.mu.Lock()
	defer b.mu.Unlock()

	if mod, ok := b.modules[key]; ok {
		return mod, nil
	}

	meta, err := contract.LoadMetadata(dir, kernelName)
	if err != nil {
		return nil, err
	}

	var device C.CUdevice
	if res := C.cuCtxGetDevice(&device); res != C.CUDA_SUCCESS {
		return nil, fmt.Errorf("cuCtxGetDevice: %w", driverErr(res))
	}

	var major, minor C.int
	C.cuDeviceGetAttribute(&major, C.CU_DEVICE_ATTRIBUTE_COMPUTE_CAPABILITY_MAJOR, device)
	C.cuDeviceGetAttribute(&minor, C.CU_DEVICE_ATTRIBUTE_COMPUTE_CAPABILITY_MINOR, device)
	deviceArch := uint32(major)*10 + uint32(minor)

	if deviceArch != meta.Target.Arch {
		return nil, fmt.Errorf("cuda: architecture mismatch: device has sm_%d, kernel requires sm_%d",
			deviceArch, meta.Target.Arch)
	}

	cubinPath := C.CString(dir + "/" + kernelName + ".cubin")
	defer C.free(unsafe.Pointer(cubinPath))

	var mod C.CUmodule
	if res := C.cuModuleLoad(&mod, cubinPath); res != C.CUDA_SUCCESS {
		return nil, fmt.Errorf("cuModuleLoad: %w", driverErr(res))
	}

	cname := C.CString(kernelName)
	defer C.free(unsafe.Pointer(cname))

	var fn C.CUfunction
	if res := C.cuModuleGetFunction(&fn, mod, cname); res != C.CUDA_SUCCESS {
		return nil, fmt.Errorf("cuModuleGetFunction: %w", driverErr(res))
	}

	if err := configureSharedMemory(fn, device, meta.Shared); err != nil {
		return nil, err
	}

	data := &moduleData{module: mod, fn: fn, meta: meta}
	b.modules[key] = data
	b.logger.Info("cuda: loaded module",
		zap.String("dir", dir), zap.String("kernel", kernelName),
		zap.Uint32("arch", deviceArch), zap.Uint32("shared", meta.Shared))
	return data, nil
}

func configureSharedMemory(fn C.CUfunction, device C.CUdevice, required uint32) error {
	var sharedOptin C.int
	C.cuDeviceGetAttribute(&sharedOptin, maxSharedOptinAttr, device)

	if int(required) > int(sharedOptin) {
		return fmt.Errorf("cuda: resource limit exceeded: requested shared memory (%d bytes) exceeds device maximum (%d bytes)",
			required, int(sharedOptin))
	}

	if required > largeSharedCutoff && int(sharedOptin) > largeSharedCutoff {
		C.cuFuncSetCacheConfig(fn, C.CU_FUNC_CACHE_PREFER_SHARED)

		var sharedStatic C.int
		C.cuFuncGetAttribute(&sharedStatic, sharedStaticAttr, fn)

		if res := C.cuFuncSetAttribute(fn, dynSharedAttr, sharedOptin-sharedStatic); res != C.CUDA_SUCCESS {
			return fmt.Errorf("cuFuncSetAttribute: %w", driverErr(res))
		}
	}
	return nil
}

// SharedMemory reports the shared-memory requirement recorded when the
// artifact behind handle was loaded.
func (b *Backend) SharedMemory(handle contract.KernelHandle) (uint32, error) {
	mod, ok := handle.(*moduleData)
	if !ok {
		return 0, contract.ErrBadHandle
	}
	return mod.meta.Shared, nil
}

// Launch calls cuLaunchKernel with block dimensions derived from
// req.NumWarps * WarpSize.
func (b *Backend) Launch(handle contract.KernelHandle, req contract.LaunchRequest) error {
	mod, ok := handle.(*moduleData)
	if !ok {
		return contract.ErrBadHandle
	}

	var argv unsafe.Pointer
	if len(req.Args) > 0 {
		argv = unsafe.Pointer(&req.Args[0])
	}

	res := C.cuLaunchKernel(
		mod.fn,
		C.uint(req.GridX), C.uint(req.GridY), C.uint(req.GridZ),
		C.uint(req.NumWarps*warpSize), 1, 1,
		C.uint(mod.meta.Shared),
		C.CUstream(unsafe.Pointer(req.Stream)),
		(*unsafe.Pointer)(argv),
		nil,
	)
	if res != C.CUDA_SUCCESS {
		return fmt.Errorf("cuLaunchKernel: %w", driverErr(res))
	}
	return nil
}
