package jit

// Dtype is a compiler-canonical element type name (spec §3: "Dtype names
// follow the compiler's canonical set").
type Dtype string

const (
	DtypeFP16 Dtype = "fp16"
	DtypeBF16 Dtype = "bf16"
	DtypeFP32 Dtype = "fp32"
	DtypeFP64 Dtype = "fp64"
	DtypeI1   Dtype = "i1"
	DtypeI8   Dtype = "i8"
	DtypeI16  Dtype = "i16"
	DtypeI32  Dtype = "i32"
	DtypeI64  Dtype = "i64"
	DtypeU1   Dtype = "u1"
	DtypeU8   Dtype = "u8"
	DtypeU16  Dtype = "u16"
	DtypeU32  Dtype = "u32"
	DtypeU64  Dtype = "u64"
)

// dtypeAliases normalizes spellings accepted on input (spec §9 Open
// Question on fp16/f16) to the canonical token the runtime ever emits in a
// Dynamic Signature. Aliases are normalized on input only — output always
// uses the canonical spelling above. The NPU backend's arg_layout parsing
// does not go through this table; it has its own list of type names.
var dtypeAliases = map[string]Dtype{
	"f16":  DtypeFP16,
	"f32":  DtypeFP32,
	"f64":  DtypeFP64,
	"bool": DtypeI1,
}

// CanonicalDtype resolves an input spelling (canonical or aliased) to the
// canonical Dtype. ok is false for names outside the compiler's dtype set.
func CanonicalDtype(name string) (Dtype, bool) {
	switch Dtype(name) {
	case DtypeFP16, DtypeBF16, DtypeFP32, DtypeFP64,
		DtypeI1, DtypeI8, DtypeI16, DtypeI32, DtypeI64,
		DtypeU1, DtypeU8, DtypeU16, DtypeU32, DtypeU64:
		return Dtype(name), true
	}
	if d, ok := dtypeAliases[name]; ok {
		return d, true
	}
	return "", false
}
