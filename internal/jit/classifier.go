package jit

import (
	"fmt"
	"math"
)

// classifier walks one call's argument pack against a StaticSignature and
// produces the payload bytes and signature tokens the Kernel Handle needs
// (spec §4.3). It is the Go shape of the original's ArgHandle.
type classifier struct {
	ssig   StaticSignature
	buf    ParameterBuffer
	tokens []string
	idx    int
}

// Classify runs the argument classifier over args against ssig, returning
// the populated ParameterBuffer and the ordered signature tokens. The
// caller joins tokens with "," to obtain the dynamic signature (spec
// §4.4 step 2), and reads buf.Bytes()/buf.Pointers() to build a launch
// request.
func Classify(ssig StaticSignature, args ...any) (buf *ParameterBuffer, tokens []string, err error) {
	c := &classifier{ssig: ssig}
	c.buf.reserve(ssig.NumArgs)
	c.tokens = make([]string, 0, ssig.NumArgs)

	for _, a := range args {
		if err := c.handleArg(a); err != nil {
			return nil, nil, err
		}
	}
	c.buf.appendGlobalScratch()
	return &c.buf, c.tokens, nil
}

func (c *classifier) handleArg(item any) error {
	if opt, ok := item.(optionalArg); ok {
		v, present := opt.unwrap()
		if !present {
			c.tokens = append(c.tokens, "nullopt")
			c.idx++
			return nil
		}
		return c.handleArg(v)
	}
	if s, ok := item.(Scalar); ok {
		v, present := s.unwrap()
		if !present {
			return fmt.Errorf("%w: symbolic scalar at argument %d", ErrUnsupportedArgument, c.idx)
		}
		return c.handleArgPlain(v)
	}
	return c.handleArgPlain(item)
}

func (c *classifier) handleArgPlain(item any) error {
	defer func() { c.idx++ }()

	if t, ok := item.(TensorLike); ok {
		return c.handleTensor(t)
	}

	class, ok := c.ssig.At(c.idx)
	if !ok {
		return fmt.Errorf("%w: no static classification for argument %d", ErrSignatureMismatch, c.idx)
	}

	switch class {
	case ArgConstexpr:
		c.tokens = append(c.tokens, fmt.Sprint(item))
		return nil
	case ArgSpecialized:
		return c.handleSpecialized(item)
	default:
		return c.handleNonConstexpr(item)
	}
}

func (c *classifier) handleTensor(t TensorLike) error {
	class, ok := c.ssig.At(c.idx)
	if !ok {
		return fmt.Errorf("%w: no static classification for argument %d", ErrSignatureMismatch, c.idx)
	}
	if class == ArgConstexpr {
		return fmt.Errorf("%w: tensor argument %d classified CONSTEXPR", ErrUnsupportedArgument, c.idx)
	}

	addr := t.DataPtr()
	c.buf.pushUintptr(addr)

	token := "*" + string(t.Dtype())
	if class == ArgSpecialized && alignedTo16(addr) {
		token += ":16"
	}
	c.tokens = append(c.tokens, token)
	return nil
}

func (c *classifier) handleSpecialized(item any) error {
	dtype, isInt := tritonTypeNameIntegral(item)
	if isInt {
		iv, _ := toInt64(item)
		switch {
		case iv == 1:
			// the one case where the argument contributes no payload bytes
			c.tokens = append(c.tokens, dtype+":1")
			return nil
		case iv >= math.MinInt32 && iv <= math.MaxInt32:
			c.pushPlain(item)
			c.tokens = append(c.tokens, dtype+":i32")
			return nil
		default:
			c.pushPlain(item)
			c.tokens = append(c.tokens, dtype)
			return nil
		}
	}

	dtype, ok := tritonTypeName(item)
	if !ok {
		return fmt.Errorf("%w: unsupported plain argument type %T", ErrUnsupportedArgument, item)
	}
	c.pushPlain(item)
	c.tokens = append(c.tokens, dtype)
	return nil
}

func (c *classifier) handleNonConstexpr(item any) error {
	dtype, ok := tritonTypeName(item)
	if !ok {
		return fmt.Errorf("%w: unsupported plain argument type %T", ErrUnsupportedArgument, item)
	}
	c.pushPlain(item)
	c.tokens = append(c.tokens, dtype)
	return nil
}

func (c *classifier) pushPlain(item any) {
	switch v := item.(type) {
	case bool:
		c.buf.pushBool(v)
	case int32:
		c.buf.pushInt32(v)
	case int64:
		c.buf.pushInt64(v)
	case uint32:
		c.buf.pushUint32(v)
	case uint64:
		c.buf.pushUint64(v)
	case float32:
		c.buf.pushFloat32(v)
	case float64:
		c.buf.pushFloat64(v)
	}
}

// tritonTypeName maps a plain Go scalar to its canonical compiler dtype
// name, mirroring triton_type<T>::name for every concrete width the
// classifier accepts directly (not boxed through Scalar).
func tritonTypeName(item any) (string, bool) {
	switch item.(type) {
	case bool:
		return string(DtypeI1), true
	case int32:
		return string(DtypeI32), true
	case int64:
		return string(DtypeI64), true
	case uint32:
		return string(DtypeU32), true
	case uint64:
		return string(DtypeU64), true
	case float32:
		return string(DtypeFP32), true
	case float64:
		return string(DtypeFP64), true
	default:
		return "", false
	}
}

// tritonTypeNameIntegral reports the dtype name and whether item is one
// of the integral Go types eligible for the ":1"/":i32" specialization
// tokens (spec §3 grammar table).
func tritonTypeNameIntegral(item any) (string, bool) {
	switch item.(type) {
	case int32:
		return string(DtypeI32), true
	case int64:
		return string(DtypeI64), true
	case uint32:
		return string(DtypeU32), true
	case uint64:
		return string(DtypeU64), true
	default:
		return "", false
	}
}

func toInt64(item any) (int64, bool) {
	switch v := item.(type) {
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}
