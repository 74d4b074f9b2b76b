package proxy

import (
	"time"

	threadproxy "github.com/wippyai/thread-proxy"
	"github.com/wippyai/thread-proxy/errors"
	"github.com/wippyai/thread-proxy/futex"
	"github.com/wippyai/thread-proxy/sig"
)

// syncDrainInterval bounds how long a synchronously blocked caller goes
// between drains of its own inbound queue.
const syncDrainInterval = time.Millisecond

var paramNames = [...]string{"i32", "i64", "f32", "f64", "bool", "f2i"}

// validate checks a dispatch request: non-nil target and function, argument
// list matching the signature's count and slot tags.
func (t *Thread) validate(target *Thread, s sig.Signature, fn threadproxy.Func, args []threadproxy.Arg) error {
	if t.reg.closed.Load() {
		return errors.Closed(errors.PhaseDispatch, "registry")
	}
	if target == nil {
		return errors.NilPointer(errors.PhaseDispatch, "target thread")
	}
	if fn == nil {
		return errors.NilFunc(errors.PhaseDispatch)
	}
	if want := s.NumParams(); want != len(args) {
		return errors.ArgCountMismatch(want, len(args))
	}
	for i, a := range args {
		if want := s.Param(i); a.Type() != want {
			return errors.ArgTypeMismatch(i, paramNames[want], paramNames[a.Type()])
		}
	}
	return nil
}

// CallSync runs fn on target and blocks until it has executed and published
// its result, which is returned. A call directed at the calling thread runs
// in place immediately. The blocked caller drains its own queue while
// waiting. Requires the caller's blocking policy to permit blocking; a
// violation panics.
func (t *Thread) CallSync(target *Thread, s sig.Signature, fn threadproxy.Func, args ...threadproxy.Arg) (threadproxy.Ret, error) {
	if err := t.validate(target, s, fn, args); err != nil {
		return threadproxy.Void(), err
	}
	if t == target {
		return fn(args), nil
	}

	t.checkBlockingAllowed()

	c := &call{fn: fn, args: args, signature: s}
	target.enqueue(c)

	// Drain our own queue between waits so a thread synchronously calling
	// us in the meantime cannot deadlock against this block. Anything the
	// target enqueued at us happens-before it published our completion, so
	// the drain after the loop picks up work that landed between the last
	// in-loop drain and the completion check.
	for {
		t.ProcessQueuedCalls()
		if c.completed() {
			break
		}
		_ = futex.Wait(&c.done, 0, syncDrainInterval)
	}
	t.ProcessQueuedCalls()
	return c.ret, nil
}

// CallAsync enqueues fn on target and returns without waiting. Calls issued
// by one thread to one target execute in issue order; no ordering holds
// across different sources.
func (t *Thread) CallAsync(target *Thread, s sig.Signature, fn threadproxy.Func, args ...threadproxy.Arg) error {
	if err := t.validate(target, s, fn, args); err != nil {
		return err
	}
	target.enqueue(&call{fn: fn, args: args, signature: s})
	return nil
}

// CallAsyncWaitable enqueues fn on target and returns a handle the caller
// may Wait on to collect the result. The handle must be released exactly
// once with Close; discarding it without Close leaks it until the registry
// reports the leak on shutdown.
func (t *Thread) CallAsyncWaitable(target *Thread, s sig.Signature, fn threadproxy.Func, args ...threadproxy.Arg) (*Call, error) {
	if err := t.validate(target, s, fn, args); err != nil {
		return nil, err
	}

	c := &call{fn: fn, args: args, signature: s}
	w := &Call{c: c, table: t.reg.waitable}
	h, err := t.reg.waitable.Insert(w)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDispatch, errors.KindAllocation, err, "allocate waitable call handle")
	}
	w.handle = h
	c.onDone = func() { t.reg.waitable.Completed(h) }

	target.enqueue(c)
	return w, nil
}

// Dispatch runs fn on target, in place when the calling thread already is
// the target (reported by the return value), asynchronously otherwise.
// Satellite data is attached to the call and, if it implements
// threadproxy.Dropper, dropped after execution.
func (t *Thread) Dispatch(target *Thread, s sig.Signature, fn threadproxy.Func, satellite any, args ...threadproxy.Arg) (bool, error) {
	if err := t.validate(target, s, fn, args); err != nil {
		return false, err
	}
	if t == target {
		fn(args)
		if d, ok := satellite.(threadproxy.Dropper); ok {
			d.Drop()
		}
		return true, nil
	}
	target.enqueue(&call{fn: fn, args: args, satellite: satellite, signature: s})
	return false, nil
}

// DispatchAsync enqueues fn on target unconditionally, even when the
// calling thread is the target; a self-directed call runs on the next
// drain. Delivery semantics otherwise match CallAsync.
func (t *Thread) DispatchAsync(target *Thread, s sig.Signature, fn threadproxy.Func, satellite any, args ...threadproxy.Arg) error {
	if err := t.validate(target, s, fn, args); err != nil {
		return err
	}
	target.enqueue(&call{fn: fn, args: args, satellite: satellite, signature: s})
	return nil
}
