package jit

import (
	"fmt"
	"sync"
	"time"

	"github.com/tilejit/runtime/internal/backend"
	"github.com/tilejit/runtime/internal/compiler"
	"github.com/tilejit/runtime/internal/metrics"
)

// overloadKey identifies one compiled-and-loaded specialization within an
// EntryPoint: a dynamic signature on a particular device (spec §4.4 step
// 4).
type overloadKey struct {
	dynSignature string
	deviceIndex  int
}

// EntryPoint is the JIT Entry Point for one (path, name) pair: it owns
// the static signature extracted once from the Compiler Bridge and the
// overload cache of compiled Kernel Handles, keyed by dynamic signature
// and device. It is the Go shape of the original's
// TritonJITFunctionImpl.
type EntryPoint struct {
	path string
	name string
	ssig StaticSignature

	bridge compiler.Bridge
	be     backend.Backend

	overloads *onceCache[overloadKey, *KernelHandle]
}

// StaticSignature returns the class-tag list extracted from the Compiler
// Bridge when this EntryPoint was first constructed.
func (e *EntryPoint) StaticSignature() StaticSignature {
	return e.ssig
}

// Registry is the process-wide table of EntryPoints, keyed by (path,
// name). get_instance in the original is a static method backed by a
// global map; Registry is that map made an explicit, injectable
// dependency instead of package-level global state.
type Registry struct {
	bridge compiler.Bridge
	be     backend.Backend

	mu        sync.Mutex
	functions map[string]*EntryPoint
}

// NewRegistry constructs a Registry over a single Compiler Bridge and
// Backend pair — matching the original, which is templated on exactly
// one BackendPolicy per build.
func NewRegistry(bridge compiler.Bridge, be backend.Backend) *Registry {
	return &Registry{
		bridge:    bridge,
		be:        be,
		functions: make(map[string]*EntryPoint),
	}
}

func registryKey(path, name string) string {
	return path + "::" + name
}

// GetInstance returns the EntryPoint for (path, name), constructing it
// (and extracting its static signature from the Compiler Bridge) on first
// call. Subsequent calls for the same pair return the same instance. The
// registry lock is not held across the bridge call, so concurrent first
// calls for the same pair may each extract the signature; only the first
// EntryPoint installed is kept and returned to all of them.
func (r *Registry) GetInstance(path, name string) (*EntryPoint, error) {
	key := registryKey(path, name)

	r.mu.Lock()
	if ep, ok := r.functions[key]; ok {
		r.mu.Unlock()
		return ep, nil
	}
	r.mu.Unlock()

	tags, err := r.bridge.ExtractStaticSignature(path, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompiler, err)
	}

	classes := make([]ArgClass, len(tags))
	for i, tag := range tags {
		class, ok := parseArgClass(tag)
		if !ok {
			return nil, fmt.Errorf("%w: unrecognized static class %q at position %d for %s::%s",
				ErrCompiler, tag, i, path, name)
		}
		classes[i] = class
	}

	ep := &EntryPoint{
		path:      path,
		name:      name,
		ssig:      StaticSignature{NumArgs: len(classes), Classes: classes},
		bridge:    r.bridge,
		be:        r.be,
		overloads: newOnceCache[overloadKey, *KernelHandle](),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.functions[key]; ok {
		// another goroutine constructed and installed it first
		return existing, nil
	}
	r.functions[key] = ep
	return ep, nil
}

func parseArgClass(tag string) (ArgClass, bool) {
	switch tag {
	case "non_constexpr":
		return ArgNonConstexpr, true
	case "specialized":
		return ArgSpecialized, true
	case "constexpr":
		return ArgConstexpr, true
	default:
		return 0, false
	}
}

// Launch runs the full dispatch path (spec §4.4 "Invocation"): classify
// args against the static signature, derive the dynamic signature, look
// up or compile-and-load the matching overload, and launch it.
func (e *EntryPoint) Launch(stream uintptr, gridX, gridY, gridZ, numWarps, numStages uint32, args ...any) error {
	buf, tokens, err := Classify(e.ssig, args...)
	if err != nil {
		return err
	}
	dynSignature := joinSignature(tokens)

	if err := e.be.EnsureContext(); err != nil {
		return fmt.Errorf("%w: %v", ErrDriverLoad, err)
	}
	deviceIndex, err := e.be.CurrentDeviceIndex()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDriverLoad, err)
	}

	handle, err := e.resolveOverload(dynSignature, int(numWarps), int(numStages), deviceIndex)
	if err != nil {
		return err
	}

	return handle.Launch(stream, gridX, gridY, gridZ, numWarps, buf.Pointers(), buf.Bytes(), dynSignature)
}

// LaunchRaw is the low-level bypass (spec §4.4 "Low-level bypass"): the
// caller supplies a pre-built dynamic signature and argument pointers
// directly, skipping the classifier but sharing the overload cache and
// compile path.
func (e *EntryPoint) LaunchRaw(stream uintptr, gridX, gridY, gridZ, numWarps, numStages uint32, dynSignature string, args []byte) error {
	if err := e.be.EnsureContext(); err != nil {
		return fmt.Errorf("%w: %v", ErrDriverLoad, err)
	}
	deviceIndex, err := e.be.CurrentDeviceIndex()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDriverLoad, err)
	}

	handle, err := e.resolveOverload(dynSignature, int(numWarps), int(numStages), deviceIndex)
	if err != nil {
		return err
	}

	return handle.Launch(stream, gridX, gridY, gridZ, numWarps, nil, args, dynSignature)
}

func (e *EntryPoint) resolveOverload(dynSignature string, numWarps, numStages, deviceIndex int) (*KernelHandle, error) {
	key := overloadKey{dynSignature: dynSignature, deviceIndex: deviceIndex}

	var missed bool
	handle, err := e.overloads.getOrCreate(key, func() (*KernelHandle, error) {
		missed = true
		start := time.Now()
		dir, err := e.bridge.Compile(e.path, e.name, dynSignature, numWarps, numStages, deviceIndex)
		metrics.CompileDuration.Observe(float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.CompilesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: %w", ErrCompiler, err)
		}
		metrics.CompilesTotal.WithLabelValues("ok").Inc()
		return NewKernelHandle(dir, e.name, e.be), nil
	})
	if err != nil {
		return nil, err
	}
	if missed {
		metrics.OverloadCacheLookups.WithLabelValues("miss").Inc()
	} else {
		metrics.OverloadCacheLookups.WithLabelValues("hit").Inc()
	}
	return handle, nil
}
