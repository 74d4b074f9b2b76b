package proxy

import (
	"sync/atomic"
	"time"

	threadproxy "github.com/wippyai/thread-proxy"
	"github.com/wippyai/thread-proxy/errors"
	"github.com/wippyai/thread-proxy/futex"
	"github.com/wippyai/thread-proxy/sig"
	"github.com/wippyai/thread-proxy/track"
)

// call is one queued invocation. The done cell is a futex address: 0 while
// pending, 1 once the result has been published.
type call struct {
	fn        threadproxy.Func
	args      []threadproxy.Arg
	satellite any
	onDone    func()
	ret       threadproxy.Ret
	signature sig.Signature
	done      uint32
}

// execute runs the call on the current goroutine, publishes the result and
// wakes every waiter on the done cell. Satellite data is dropped after the
// function returns, before completion is visible.
func (c *call) execute() {
	c.ret = c.fn(c.args)
	if d, ok := c.satellite.(threadproxy.Dropper); ok {
		d.Drop()
	}
	atomic.StoreUint32(&c.done, 1)
	futex.Wake(&c.done, futex.WakeAll)
	if c.onDone != nil {
		c.onDone()
	}
}

func (c *call) completed() bool {
	return atomic.LoadUint32(&c.done) == 1
}

// Outcome reports how a Wait on a waitable call ended.
type Outcome uint8

const (
	// Completed means the call has executed and its result is available.
	Completed Outcome = iota
	// TimedOut means the timeout elapsed first. The call may still complete
	// later; Wait can be re-issued.
	TimedOut
)

// Call is the handle of an in-flight waitable dispatch. It must be released
// exactly once with Close after the final Wait, or discarded with Close
// without waiting (the call still executes, its result is never collected).
type Call struct {
	c      *call
	table  *track.Table[*Call]
	handle track.Handle
	closed uint32
}

// Wait blocks until the call completes or timeout elapses. A negative
// timeout waits forever. Waiting on an already-completed call returns
// immediately; a timed-out Wait may be re-issued.
func (w *Call) Wait(timeout time.Duration) (Outcome, threadproxy.Ret, error) {
	if atomic.LoadUint32(&w.closed) == 1 {
		return TimedOut, threadproxy.Void(), errors.Closed(errors.PhaseWait, "waitable call")
	}

	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if w.c.completed() {
			return Completed, w.c.ret, nil
		}
		remaining := timeout
		if timeout >= 0 {
			if remaining = time.Until(deadline); remaining < 0 {
				return TimedOut, threadproxy.Void(), nil
			}
		}
		switch err := futex.Wait(&w.c.done, 0, remaining); err {
		case nil, futex.ErrWouldBlock:
			// Woken or already published; loop re-checks the flag.
		case futex.ErrTimedOut:
			return TimedOut, threadproxy.Void(), nil
		default:
			return TimedOut, threadproxy.Void(), err
		}
	}
}

// Done reports whether the call has completed, without blocking.
func (w *Call) Done() bool {
	return w.c.completed()
}

// Close releases the handle. It is single-use; a second Close is an error.
// Closing before completion abandons interest in the result but does not
// stop the call from executing.
func (w *Call) Close() error {
	if !atomic.CompareAndSwapUint32(&w.closed, 0, 1) {
		return errors.Closed(errors.PhaseWait, "waitable call")
	}
	w.table.Remove(w.handle)
	return nil
}

// Handle returns the tracking handle of the call, for observability.
func (w *Call) Handle() track.Handle {
	return w.handle
}
