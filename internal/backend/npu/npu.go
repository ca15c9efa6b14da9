//go:build npu
// +build npu

// Package npu implements the NPU-class Backend against Ascend's acl/rt
// driver stack, grounded on
// original_source/include/triton_jit/backends/npu_backend.h: a single
// packed argument buffer (24-byte system header, user args, trailing grid
// dimensions) rather than a void** array, parse_signature as the fallback
// when an artifact carries no arg_layout metadata, and monotonic
// per-kernel-name stub versioning.
package npu

/*
#cgo LDFLAGS: -lascendcl -lruntime
#include "acl/acl.h"
#include "runtime/rt.h"
#include <stdlib.h>
#include <string.h>
*/
import "C"

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/tilejit/runtime/internal/backend/contract"
)

const warpSize = 1

// npuArgType mirrors NpuArgType: the four wire widths a packed argument
// can take, plus POINTER.
type npuArgType uint8

const (
	argPointer npuArgType = iota
	argI32
	argI64
	argF32
	argF64
)

func (t npuArgType) size() int {
	switch t {
	case argPointer, argI64, argF64:
		return 8
	default:
		return 4
	}
}

// parseSignature derives an argument layout from a dynamic signature
// string when the artifact's metadata carries no arg_layout, mirroring
// parse_signature: pointer tokens ("*...") become POINTER, the
// specialization suffix is stripped and ignored, constexpr numeric tokens
// and "nullopt" are skipped.
func parseSignature(sig string) []npuArgType {
	var layout []npuArgType
	for _, tok := range strings.Split(sig, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || tok == "nullopt" {
			continue
		}
		if isConstexprToken(tok) {
			continue
		}
		if idx := strings.IndexByte(tok, ':'); idx >= 0 {
			tok = tok[:idx]
		}

		switch {
		case strings.HasPrefix(tok, "*"):
			layout = append(layout, argPointer)
		case strings.HasPrefix(tok, "i64"), strings.HasPrefix(tok, "u64"):
			layout = append(layout, argI64)
		case strings.HasPrefix(tok, "i32"), strings.HasPrefix(tok, "u32"):
			layout = append(layout, argI32)
		case strings.HasPrefix(tok, "fp64"), strings.HasPrefix(tok, "f64"):
			layout = append(layout, argF64)
		case strings.HasPrefix(tok, "fp32"), strings.HasPrefix(tok, "f32"),
			strings.HasPrefix(tok, "fp16"), strings.HasPrefix(tok, "f16"),
			strings.HasPrefix(tok, "bf16"):
			layout = append(layout, argF32)
		default:
			layout = append(layout, argI64)
		}
	}
	return layout
}

func isConstexprToken(tok string) bool {
	if tok == "" {
		return false
	}
	if tok[0] == '-' && len(tok) > 1 {
		tok = tok[1:]
	}
	_, err := strconv.ParseInt(tok, 10, 64)
	return err == nil
}

func argLayoutFromMetadata(entries []contract.ArgLayoutEntry) []npuArgType {
	layout := make([]npuArgType, 0, len(entries))
	for _, e := range entries {
		switch e.Type {
		case "constexpr":
			continue
		case "ptr", "pointer":
			layout = append(layout, argPointer)
		case "i64", "u64":
			layout = append(layout, argI64)
		case "i32", "u32":
			layout = append(layout, argI32)
		case "fp64", "f64":
			layout = append(layout, argF64)
		case "fp32", "f32":
			layout = append(layout, argF32)
		default:
			layout = append(layout, argI64)
		}
	}
	return layout
}

// argBuffer is the Go shape of NpuArgBuffer: a contiguous byte block with
// the 24-byte system header, user args at their natural alignment, and a
// trailing (gridX, gridY, gridZ) int32 triple.
type argBuffer struct {
	buf []byte
}

const systemArgsSize = 24

func newArgBuffer(estimate int) *argBuffer {
	b := &argBuffer{buf: make([]byte, systemArgsSize, systemArgsSize+estimate+16)}
	return b
}

func (a *argBuffer) setSystemArgs(ffts uint64) {
	binary.LittleEndian.PutUint64(a.buf[0:8], ffts)
	binary.LittleEndian.PutUint64(a.buf[8:16], 0)
	binary.LittleEndian.PutUint64(a.buf[16:24], 0)
}

func (a *argBuffer) alignTo(align int) {
	rem := len(a.buf) % align
	if rem != 0 {
		a.buf = append(a.buf, make([]byte, align-rem)...)
	}
}

func (a *argBuffer) pushU64(v uint64) {
	a.alignTo(8)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	a.buf = append(a.buf, tmp[:]...)
}

func (a *argBuffer) pushU32(v uint32) {
	a.alignTo(4)
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	a.buf = append(a.buf, tmp[:]...)
}

// pushFromPayload copies width bytes from the classifier's packed payload
// at off into the NPU argument buffer at its own natural alignment,
// reinterpreting pointer/i64/f64 slots as 8 bytes and i32/f32 slots as 4,
// matching push_arg_by_type's per-type memcpy.
func (a *argBuffer) pushFromPayload(payload []byte, off int, t npuArgType) {
	width := t.size()
	if off < 0 || off+width > len(payload) {
		return
	}
	switch width {
	case 8:
		a.pushU64(binary.LittleEndian.Uint64(payload[off : off+8]))
	default:
		a.pushU32(binary.LittleEndian.Uint32(payload[off : off+4]))
	}
}

func (a *argBuffer) setGrid(gx, gy, gz uint32) {
	a.alignTo(4)
	a.pushU32(gx)
	a.pushU32(gy)
	a.pushU32(gz)
}

type moduleData struct {
	binHandle unsafe.Pointer
	fnHandle  unsafe.Pointer
	meta      contract.Metadata
}

// Backend is the NPU-class Backend Policy implementation.
type Backend struct {
	logger *zap.Logger

	mu           sync.Mutex
	modules      map[string]*moduleData
	stubCounters map[string]int
}

// New constructs an npu Backend. logger may be nil.
func New(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		logger:       logger,
		modules:      make(map[string]*moduleData),
		stubCounters: make(map[string]int),
	}
}

// WarpSize reports 1: the NPU has no warp concept. Launch does not use it;
// the block count it passes to the driver is the grid product.
func (b *Backend) WarpSize() uint32 { return warpSize }

// EnsureContext verifies an ACL context exists on the current thread,
// creating a default one on device 0 if not.
func (b *Backend) EnsureContext() error {
	var ctx C.aclrtContext
	if ret := C.aclrtGetCurrentContext(&ctx); ret != C.ACL_SUCCESS || ctx == nil {
		b.logger.Warn("npu: no ACL context found, creating default context")
		if ret := C.aclrtSetDevice(0); ret != C.ACL_SUCCESS {
			return fmt.Errorf("aclrtSetDevice: code %d", int(ret))
		}
		if ret := C.aclrtCreateContext(&ctx, 0); ret != C.ACL_SUCCESS {
			return fmt.Errorf("aclrtCreateContext: code %d", int(ret))
		}
		if ret := C.aclrtSetCurrentContext(ctx); ret != C.ACL_SUCCESS {
			return fmt.Errorf("aclrtSetCurrentContext: code %d", int(ret))
		}
	}
	return nil
}

// CurrentDeviceIndex returns the device bound to the current thread.
func (b *Backend) CurrentDeviceIndex() (int, error) {
	var deviceID C.int32_t
	if ret := C.aclrtGetDevice(&deviceID); ret != C.ACL_SUCCESS {
		return 0, fmt.Errorf("aclrtGetDevice: code %d", int(ret))
	}
	return int(deviceID), nil
}

func moduleKey(dir, kernelName string) string {
	return dir + "::" + kernelName
}

// LoadArtifact locates the kernel binary (preferring ".npubin", falling
// back through ".o"/".ttadapter"/".bin"), registers it with the RT API,
// and registers a uniquely-named function stub — versioned per kernel
// name, matching registered_names_'s monotonic counter.
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

	binPath, err := contract.FindArtifactFile(dir, kernelName, []string{".npubin", ".o", ".ttadapter", ".bin"})
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(binPath)
	if err != nil {
		return nil, fmt.Errorf("npu: reading %s: %w", binPath, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("npu: empty kernel binary %s", binPath)
	}

	deviceID, err := b.CurrentDeviceIndex()
	if err != nil {
		deviceID = 0
	}
	if ret := C.rtSetDevice(C.int32_t(deviceID)); ret != 0 {
		return nil, fmt.Errorf("rtSetDevice: code %d", int(ret))
	}

	magic := C.uint32_t(C.RT_DEV_BINARY_MAGIC_ELF)
	if meta.MixMode == "aiv" {
		magic = C.uint32_t(C.RT_DEV_BINARY_MAGIC_ELF_AIVEC)
	}

	cData := C.CBytes(data)
	defer C.free(cData)

	var binary C.rtDevBinary_t
	binary.data = cData
	binary.length = C.uint32_t(len(data))
	binary.magic = magic
	binary.version = 0

	var binHandle unsafe.Pointer
	if ret := C.rtDevBinaryRegister(&binary, (*unsafe.Pointer)(unsafe.Pointer(&binHandle))); ret != 0 {
		return nil, fmt.Errorf("rtDevBinaryRegister: code %d", int(ret))
	}

	stubName := fmt.Sprintf("%s_%d", kernelName, b.stubCounters[kernelName])
	b.stubCounters[kernelName]++

	cStub := C.CString(stubName)
	defer C.free(unsafe.Pointer(cStub))
	cName := C.CString(kernelName)
	defer C.free(unsafe.Pointer(cName))

	fnHandle := C.malloc(C.sizeof_size_t)
	if ret := C.rtFunctionRegister(binHandle, fnHandle, cStub, unsafe.Pointer(cName), 0); ret != 0 {
		C.free(fnHandle)
		return nil, fmt.Errorf("rtFunctionRegister: code %d", int(ret))
	}

	mod := &moduleData{binHandle: binHandle, fnHandle: fnHandle, meta: meta}
	b.modules[key] = mod
	b.logger.Info("npu: loaded module",
		zap.String("dir", dir), zap.String("kernel", kernelName),
		zap.String("stub", stubName), zap.String("mixMode", meta.MixMode))
	return mod, nil
}

// SharedMemory reports the shared-memory requirement recorded when the
// artifact was loaded.
func (b *Backend) SharedMemory(handle contract.KernelHandle) (uint32, error) {
	mod, ok := handle.(*moduleData)
	if !ok {
		return 0, contract.ErrBadHandle
	}
	return mod.meta.Shared, nil
}

// Launch packs req.Payload into the NPU's single contiguous argument
// buffer (system header, user args, trailing grid dims) and calls
// rtKernelLaunch with a block count of gridX*gridY*gridZ — the NPU has no
// separate block-dimension axis the way CUDA does.
func (b *Backend) Launch(handle contract.KernelHandle, req contract.LaunchRequest) error {
	mod, ok := handle.(*moduleData)
	if !ok {
		return contract.ErrBadHandle
	}

	var fftsAddr C.uint64_t
	var fftsLen C.uint32_t
	if ret := C.rtGetC2cCtrlAddr(&fftsAddr, &fftsLen); ret != 0 {
		return fmt.Errorf("rtGetC2cCtrlAddr: code %d", int(ret))
	}

	layout := argLayoutFromMetadata(mod.meta.ArgLayout)
	if len(layout) == 0 {
		layout = parseSignature(req.Signature)
	}

	buf := newArgBuffer(len(layout)*8 + 16)
	buf.setSystemArgs(uint64(fftsAddr))

	off := 0
	for _, t := range layout {
		width := t.size()
		rem := off % width
		if rem != 0 {
			off += width - rem
		}
		buf.pushFromPayload(req.Payload, off, t)
		off += width
	}

	buf.setGrid(req.GridX, req.GridY, req.GridZ)

	blockNum := req.GridX * req.GridY * req.GridZ

	cBuf := C.CBytes(buf.buf)
	defer C.free(cBuf)

	ret := C.rtKernelLaunch(
		mod.fnHandle,
		C.uint32_t(blockNum),
		cBuf,
		C.uint32_t(len(buf.buf)),
		nil,
		C.rtStream_t(unsafe.Pointer(req.Stream)),
	)
	if ret != 0 {
		return fmt.Errorf("rtKernelLaunch: code %d", int(ret))
	}
	return nil
}
