package jit

// TensorLike is the capability interface the classifier needs from any
// tensor-like argument. It deliberately doesn't prescribe a tensor type —
// tensor allocation, broadcasting, and promotion are out of scope (spec
// §1 Non-goals). It has two methods, Dtype and DataPtr; there is no
// alignment method, since alignment is computed from DataPtr (see
// Alignment and alignedTo16).
type TensorLike interface {
	// Dtype returns the tensor's element type, mapped through the
	// canonical dtype table.
	Dtype() Dtype
	// DataPtr returns the address of the tensor's underlying storage.
	DataPtr() uintptr
}

// Alignment reports how many low bits of addr are zero, as a power-of-two
// byte count (e.g. 16 if addr is 16-byte aligned but not 32-byte). Tensor
// arguments only ever need the 16-byte check (spec §3 ":16" token), so
// callers compare the result against 16 rather than relying on an exact
// alignment value.
func Alignment(addr uintptr) int {
	if addr == 0 {
		return 1 << 62 // a null pointer satisfies any alignment check trivially
	}
	align := 1
	for addr&1 == 0 && align < (1<<30) {
		addr >>= 1
		align <<= 1
	}
	return align
}

// alignedTo16 reports whether addr is a non-null multiple of 16 bytes —
// the alignment-specialization convention spec §9 documents for the ":16"
// token. A null address reports false.
func alignedTo16(addr uintptr) bool {
	return addr != 0 && addr%16 == 0
}
