package threadproxy

import (
	"fmt"
	"math"

	"github.com/wippyai/thread-proxy/sig"
)

// Arg is one argument of a proxied call: a tagged variant holding exactly
// one of the four parameter types the signature scheme can describe.
// Construct with Int, Int64, Float or Double; the zero value is Int(0).
type Arg struct {
	bits uint64
	tag  sig.ParamType
}

// Int builds an i32 argument.
func Int(v int32) Arg {
	return Arg{bits: uint64(uint32(v)), tag: sig.ParamInt}
}

// Int64 builds an i64 argument.
func Int64(v int64) Arg {
	return Arg{bits: uint64(v), tag: sig.ParamInt64}
}

// Float builds an f32 argument.
func Float(v float32) Arg {
	return Arg{bits: uint64(math.Float32bits(v)), tag: sig.ParamFloat}
}

// Double builds an f64 argument.
func Double(v float64) Arg {
	return Arg{bits: math.Float64bits(v), tag: sig.ParamDouble}
}

// Type returns the argument's type tag.
func (a Arg) Type() sig.ParamType { return a.tag }

// Int returns the i32 value. Valid only for ParamInt arguments.
func (a Arg) Int() int32 { return int32(uint32(a.bits)) }

// Int64 returns the i64 value. Valid only for ParamInt64 arguments.
func (a Arg) Int64() int64 { return int64(a.bits) }

// Float returns the f32 value. Valid only for ParamFloat arguments.
func (a Arg) Float() float32 { return math.Float32frombits(uint32(a.bits)) }

// Double returns the f64 value. Valid only for ParamDouble arguments.
func (a Arg) Double() float64 { return math.Float64frombits(a.bits) }

// Bits returns the raw 64-bit representation of the argument.
func (a Arg) Bits() uint64 { return a.bits }

func (a Arg) String() string {
	switch a.tag {
	case sig.ParamInt:
		return fmt.Sprintf("i32(%d)", a.Int())
	case sig.ParamInt64:
		return fmt.Sprintf("i64(%d)", a.Int64())
	case sig.ParamFloat:
		return fmt.Sprintf("f32(%g)", a.Float())
	case sig.ParamDouble:
		return fmt.Sprintf("f64(%g)", a.Double())
	}
	return fmt.Sprintf("arg(tag=%d)", a.tag)
}

// Ret is a proxied call's return value: a tagged variant matching the
// signature's return class. The zero value is Void.
type Ret struct {
	bits uint64
	tag  sig.RetType
}

// Void is the return value of a void function.
func Void() Ret { return Ret{} }

// RetOfInt builds an i32 return value.
func RetOfInt(v int32) Ret {
	return Ret{bits: uint64(uint32(v)), tag: sig.RetInt}
}

// RetOfInt64 builds an i64 return value.
func RetOfInt64(v int64) Ret {
	return Ret{bits: uint64(v), tag: sig.RetInt64}
}

// RetOfFloat builds an f32 return value.
func RetOfFloat(v float32) Ret {
	return Ret{bits: uint64(math.Float32bits(v)), tag: sig.RetFloat}
}

// RetOfDouble builds an f64 return value.
func RetOfDouble(v float64) Ret {
	return Ret{bits: math.Float64bits(v), tag: sig.RetDouble}
}

// Type returns the return class of the value.
func (r Ret) Type() sig.RetType { return r.tag }

// IsVoid reports whether the value carries no result.
func (r Ret) IsVoid() bool { return r.tag == sig.RetVoid }

// Int returns the i32 result. Valid only for RetInt values.
func (r Ret) Int() int32 { return int32(uint32(r.bits)) }

// Int64 returns the i64 result. Valid only for RetInt64 values.
func (r Ret) Int64() int64 { return int64(r.bits) }

// Float returns the f32 result. Valid only for RetFloat values.
func (r Ret) Float() float32 { return math.Float32frombits(uint32(r.bits)) }

// Double returns the f64 result. Valid only for RetDouble values.
func (r Ret) Double() float64 { return math.Float64frombits(r.bits) }

// Bits returns the raw 64-bit representation of the result.
func (r Ret) Bits() uint64 { return r.bits }

// Func is the callable a dispatch operation runs on its target thread.
// The argument list has already been validated against the call's
// signature; the returned Ret must match the signature's return class
// (Void for void signatures).
type Func func(args []Arg) Ret

// Dropper is optionally implemented by satellite data attached to a
// dispatched call that needs cleanup once the call has executed.
type Dropper interface {
	Drop()
}
