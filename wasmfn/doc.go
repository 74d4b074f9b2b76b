// Package wasmfn binds wazero functions to the cross-thread call proxy.
//
// A wazero module instance is not safe for concurrent use; the usual remedy
// is to funnel every call through the one goroutine that owns the instance.
// Bind turns an exported api.Function into a (Signature, Func) pair that any
// thread can dispatch at the owning thread:
//
//	s, fn, err := wasmfn.Bind(ctx, mod.ExportedFunction("add"))
//	ret, err := worker.CallSync(owner, s, fn, threadproxy.Int(1), threadproxy.Int(2))
//
// Only functions whose parameters and single result fit the signature
// scheme (i32/i64/f32/f64, at most 12 parameters) can be bound.
package wasmfn
