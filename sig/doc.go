// Package sig implements the packed 32-bit call-signature descriptor used by
// the cross-thread call proxy.
//
// A signature encodes a function's calling convention into a single uint32:
//
//	bits 31:29  return class (void, i32, i64, f32, f64)
//	bits 28:25  parameter count (0-12)
//	bit  24     reserved
//	bits 2i+1:2i type tag of parameter i, packed from bit 0 upwards
//
// The encoding is a value type: once constructed a Signature never changes,
// and two signatures describing the same convention compare equal.
//
// Signatures can be built programmatically:
//
//	s, err := sig.Encode(sig.RetInt, sig.ParamInt, sig.ParamDouble)
//
// or parsed from the compact letter form, where the first letter is the
// return class and the rest are parameters (v=void, i=i32, j=i64, f=f32,
// d=f64):
//
//	s, err := sig.Parse("iid")
//
// Do not depend on the exact bit values of the scheme; they are internal to
// the proxy and may change.
package sig
