// Package mainthread provides convenience entry points for running work on
// the runtime host thread.
//
// The generic helpers (SyncRun, AsyncRun, WaitableRun) fix the dispatch
// target to the registry's host thread. On top of those, Run, RunInt and
// RunDouble evaluate a script string on the host thread through a
// host-supplied Evaluator; the package contains no script engine of its
// own.
//
//	m := mainthread.New(reg, evaluator)
//	n, err := m.RunInt(worker, "1 + 2")
//
// Evaluation is synchronous: the caller blocks until the host thread has
// drained its queue and run the script.
package mainthread
