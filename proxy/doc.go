// Package proxy implements the cross-thread call dispatcher.
//
// A Registry owns a set of Threads, one of which is designated the runtime
// host thread. Each Thread is an execution context with its own inbound
// call queue; any goroutine may dispatch calls at any thread, and the
// goroutine that owns a thread drains its queue with ProcessQueuedCalls.
//
// # Delivery Modes
//
// Three delivery modes are provided:
//
//	CallSync          block until the target has executed the call; a call
//	                  directed at the calling thread runs in place
//	CallAsync         fire-and-forget; FIFO order per source-to-target pair
//	CallAsyncWaitable fire-and-forget plus a Call handle whose result can be
//	                  collected later with Wait and must be released with Close
//
// Two targeted dispatch variants complete the surface: Dispatch reports
// whether the call ran in place or was proxied, and DispatchAsync enqueues
// unconditionally, even to the calling thread itself.
//
// # Deadlock Avoidance
//
// A thread blocked in CallSync drains its own inbound queue while waiting,
// so two threads synchronously calling each other make progress instead of
// deadlocking. Self-targeted synchronous calls always execute in place for
// the same reason.
//
// # Blocking Policy
//
// Threads created with BlockingDisallowed must never issue a blocking
// dispatch; doing so is a fatal usage error and panics. This models host
// environments where the runtime thread must stay responsive.
package proxy
