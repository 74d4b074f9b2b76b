package sig

import (
	"strings"

	"github.com/wippyai/thread-proxy/errors"
)

// Signature is a packed 32-bit call-signature descriptor.
// The zero value is "void function of no arguments".
type Signature uint32

// RetType classifies a function's return value.
type RetType uint8

const (
	RetVoid RetType = iota
	RetInt
	RetInt64
	RetFloat
	RetDouble
)

// ParamType is the 2-bit type tag of one parameter slot.
type ParamType uint8

const (
	ParamInt ParamType = iota
	ParamInt64
	ParamFloat
	ParamDouble

	// Extended tags reserved for GL query forwarding. Not encodable.
	// They do not fit the 2-bit parameter slot and are rejected by Encode;
	// generic proxying never uses them.
	ParamBool
	ParamFloatToInt
)

// MaxParams is the largest number of parameters a signature can describe.
const MaxParams = 12

const (
	retShift   = 29
	countShift = 25
	countMask  = 0xF
	paramMask  = 0x3
)

// Encode packs a return class and up to MaxParams parameter tags into a
// Signature. Exceeding MaxParams or passing an extended tag is a caller
// error; it cannot occur for signatures built from fixed literals.
func Encode(ret RetType, params ...ParamType) (Signature, error) {
	if ret > RetDouble {
		return 0, errors.InvalidRetType(uint8(ret))
	}
	if len(params) > MaxParams {
		return 0, errors.TooManyParams(len(params))
	}
	s := Signature(ret)<<retShift | Signature(len(params))<<countShift
	for i, p := range params {
		if p > ParamDouble {
			return 0, errors.InvalidParamType(i, uint8(p))
		}
		s |= Signature(p) << (2 * i)
	}
	return s, nil
}

// MustEncode is Encode for signatures known valid at compile time.
// It panics on error.
func MustEncode(ret RetType, params ...ParamType) Signature {
	s, err := Encode(ret, params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Ret returns the signature's return class.
func (s Signature) Ret() RetType {
	return RetType(s >> retShift)
}

// NumParams returns the number of parameters the signature describes.
func (s Signature) NumParams() int {
	return int(s>>countShift) & countMask
}

// Param returns the type tag of parameter i. It panics if i is out of
// range for the signature's parameter count.
func (s Signature) Param(i int) ParamType {
	if i < 0 || i >= s.NumParams() {
		panic("sig: parameter index out of range")
	}
	return ParamType(s>>(2*i)) & paramMask
}

var retLetters = [...]byte{'v', 'i', 'j', 'f', 'd'}
var paramLetters = [...]byte{'i', 'j', 'f', 'd'}

// String renders the signature in compact letter form, return class first:
// "v" for a void niladic function, "iid" for i32(i32, f64).
func (s Signature) String() string {
	var b strings.Builder
	r := s.Ret()
	if int(r) >= len(retLetters) {
		return "invalid"
	}
	b.WriteByte(retLetters[r])
	for i := 0; i < s.NumParams(); i++ {
		b.WriteByte(paramLetters[s.Param(i)])
	}
	return b.String()
}

// Parse builds a Signature from the compact letter form accepted by String.
// The first letter is the return class (v/i/j/f/d); each following letter
// is a parameter tag (i/j/f/d).
func Parse(text string) (Signature, error) {
	if text == "" {
		return 0, errors.InvalidSignatureText(text, "empty")
	}
	ret, ok := retFromLetter(text[0])
	if !ok {
		return 0, errors.InvalidSignatureText(text, "bad return letter")
	}
	params := make([]ParamType, 0, len(text)-1)
	for i := 1; i < len(text); i++ {
		p, ok := paramFromLetter(text[i])
		if !ok {
			return 0, errors.InvalidSignatureText(text, "bad parameter letter")
		}
		params = append(params, p)
	}
	return Encode(ret, params...)
}

func retFromLetter(c byte) (RetType, bool) {
	switch c {
	case 'v':
		return RetVoid, true
	case 'i':
		return RetInt, true
	case 'j':
		return RetInt64, true
	case 'f':
		return RetFloat, true
	case 'd':
		return RetDouble, true
	}
	return 0, false
}

func paramFromLetter(c byte) (ParamType, bool) {
	switch c {
	case 'i':
		return ParamInt, true
	case 'j':
		return ParamInt64, true
	case 'f':
		return ParamFloat, true
	case 'd':
		return ParamDouble, true
	}
	return 0, false
}
