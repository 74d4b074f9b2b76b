// Package threadproxy provides cross-thread call proxying: any goroutine can
// request that a function run on a specific target execution context, with
// synchronous, fire-and-forget, and waitable delivery.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	threadproxy/       Root package with the typed Arg/Ret variants and Func
//	├── sig/           Packed 32-bit call-signature encoding
//	├── futex/         Wait-on-address / wake primitive with timeout
//	├── proxy/         Threads, registry, call queues, dispatch operations
//	├── track/         Handle table for in-flight waitable calls
//	├── errors/        Structured error types
//	├── mainthread/    Run functions or scripts on the runtime host thread
//	└── wasmfn/        Bind wazero functions for proxied invocation
//
// # Quick Start
//
// Register threads, bind one goroutine per thread, and dispatch:
//
//	reg := proxy.NewRegistry()
//	defer reg.Close()
//
//	host := reg.Host()
//	worker := reg.NewThread("worker")
//
//	go func() {
//	    ret, err := worker.CallSync(host, sig.MustEncode(sig.RetInt, sig.ParamInt),
//	        func(args []threadproxy.Arg) threadproxy.Ret {
//	            return threadproxy.RetOfInt(args[0].Int() + 1)
//	        }, threadproxy.Int(41))
//	    ...
//	}()
//
//	for {
//	    host.ProcessQueuedCalls()
//	    ...
//	}
//
// # Delivery Modes
//
// Synchronous dispatch blocks the caller until the target has executed the
// call and published its result; a call to the caller's own thread executes
// in place. Fire-and-forget dispatch never blocks and guarantees FIFO order
// per source-to-target pair. Waitable dispatch returns a handle whose result
// can be collected later with a timeout; the handle must be released exactly
// once with Close.
//
// # Thread Safety
//
// Registries, threads, and waitable call handles are safe for concurrent
// use. Each Thread's ProcessQueuedCalls must only be invoked by the
// goroutine that owns the thread; everything else may be called from
// anywhere.
package threadproxy
