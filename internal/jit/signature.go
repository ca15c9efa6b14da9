package jit

import "unsafe"

// ParameterBuffer is an aligned byte buffer holding one launch's argument
// values back to back, in the order the classifier pushes them. It is the
// Go analogue of the original's ParameterBuffer (triton_jit_function_impl.h):
// each push rounds the cursor up to the pushed type's natural alignment,
// records the resulting offset, and copies the value's bytes in.
//
// Pointers converts the offset vector to a void** (one pointer per slot)
// for a GPU-class backend; Bytes hands the whole buffer to an NPU-class
// backend, which re-derives per-argument widths from the artifact's
// arg_layout or a parse of the dynamic signature (spec §4.1.2).
type ParameterBuffer struct {
	buf     []byte
	cursor  int
	offsets []int
}

// reserve pre-sizes the buffer for an estimated argument count, mirroring
// the original's "4 bytes per arg" coarse estimate.
func (p *ParameterBuffer) reserve(numArgs int) {
	const estimatedBytesPerArg = 4
	if cap(p.buf) < numArgs*estimatedBytesPerArg {
		grown := make([]byte, len(p.buf), numArgs*estimatedBytesPerArg)
		copy(grown, p.buf)
		p.buf = grown
	}
	if cap(p.offsets) < numArgs {
		p.offsets = make([]int, 0, numArgs)
	}
}

func nextMultipleOf(pos, step int) int {
	return ((pos + step - 1) / step) * step
}

// pushBytes copies raw into the buffer at the next offset aligned to
// align, growing the buffer as needed, and records the offset. It is the
// single primitive every typed push below funnels through.
func (p *ParameterBuffer) pushBytes(raw []byte, align int) int {
	offset := nextMultipleOf(p.cursor, align)
	needed := offset + len(raw)
	if needed > len(p.buf) {
		grown := make([]byte, needed)
		copy(grown, p.buf)
		p.buf = grown
	}
	copy(p.buf[offset:needed], raw)
	p.offsets = append(p.offsets, offset)
	p.cursor = needed
	return offset
}

func (p *ParameterBuffer) pushUintptr(v uintptr) {
	var raw [unsafe.Sizeof(v)]byte
	*(*uintptr)(unsafe.Pointer(&raw[0])) = v
	p.pushBytes(raw[:], int(unsafe.Sizeof(v)))
}

func (p *ParameterBuffer) pushInt64(v int64) {
	var raw [8]byte
	*(*int64)(unsafe.Pointer(&raw[0])) = v
	p.pushBytes(raw[:], 8)
}

func (p *ParameterBuffer) pushUint64(v uint64) {
	var raw [8]byte
	*(*uint64)(unsafe.Pointer(&raw[0])) = v
	p.pushBytes(raw[:], 8)
}

func (p *ParameterBuffer) pushInt32(v int32) {
	var raw [4]byte
	*(*int32)(unsafe.Pointer(&raw[0])) = v
	p.pushBytes(raw[:], 4)
}

func (p *ParameterBuffer) pushUint32(v uint32) {
	var raw [4]byte
	*(*uint32)(unsafe.Pointer(&raw[0])) = v
	p.pushBytes(raw[:], 4)
}

func (p *ParameterBuffer) pushFloat64(v float64) {
	var raw [8]byte
	*(*float64)(unsafe.Pointer(&raw[0])) = v
	p.pushBytes(raw[:], 8)
}

func (p *ParameterBuffer) pushFloat32(v float32) {
	var raw [4]byte
	*(*float32)(unsafe.Pointer(&raw[0])) = v
	p.pushBytes(raw[:], 4)
}

func (p *ParameterBuffer) pushBool(v bool) {
	var raw [1]byte
	if v {
		raw[0] = 1
	}
	p.pushBytes(raw[:], 1)
}

// appendGlobalScratch pushes a null pointer slot for the global-scratch
// argument Triton 3.3 added to every kernel's parameter list.
func (p *ParameterBuffer) appendGlobalScratch() {
	p.pushUintptr(0)
}

// Bytes returns the full packed payload, ready to hand to an NPU-class
// backend.
func (p *ParameterBuffer) Bytes() []byte {
	return p.buf
}

// Pointers converts the offset vector to one unsafe.Pointer per pushed
// slot, for a GPU-class backend's void** argument array. The returned
// slice aliases p's backing array and is only valid as long as p is not
// mutated further.
func (p *ParameterBuffer) Pointers() []unsafe.Pointer {
	ptrs := make([]unsafe.Pointer, len(p.offsets))
	base := unsafe.Pointer(unsafe.SliceData(p.buf))
	for i, off := range p.offsets {
		ptrs[i] = unsafe.Add(base, off)
	}
	return ptrs
}

// Size reports the number of argument slots pushed so far.
func (p *ParameterBuffer) Size() int {
	return len(p.offsets)
}

func joinSignature(tokens []string) string {
	out := make([]byte, 0, 64)
	for i, tok := range tokens {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, tok...)
	}
	return string(out)
}
