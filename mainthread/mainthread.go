package mainthread

import (
	threadproxy "github.com/wippyai/thread-proxy"
	"github.com/wippyai/thread-proxy/errors"
	"github.com/wippyai/thread-proxy/proxy"
	"github.com/wippyai/thread-proxy/sig"
)

// Evaluator runs a script string and returns its result. Implementations
// are host-supplied; they are only ever invoked on the host thread.
type Evaluator interface {
	Eval(script string) (threadproxy.Ret, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(script string) (threadproxy.Ret, error)

// Eval implements Evaluator.
func (f EvaluatorFunc) Eval(script string) (threadproxy.Ret, error) {
	return f(script)
}

// Main fixes dispatches to a registry's host thread and carries the
// registered script evaluator.
type Main struct {
	reg *proxy.Registry
	ev  Evaluator
}

// New binds a registry and an optional evaluator. A nil evaluator is valid
// as long as only the generic run helpers are used.
func New(reg *proxy.Registry, ev Evaluator) *Main {
	return &Main{reg: reg, ev: ev}
}

// SyncRun runs fn on the host thread and blocks for its result.
func (m *Main) SyncRun(caller *proxy.Thread, s sig.Signature, fn threadproxy.Func, args ...threadproxy.Arg) (threadproxy.Ret, error) {
	return caller.CallSync(m.reg.Host(), s, fn, args...)
}

// AsyncRun runs fn on the host thread, fire-and-forget.
func (m *Main) AsyncRun(caller *proxy.Thread, s sig.Signature, fn threadproxy.Func, args ...threadproxy.Arg) error {
	return caller.CallAsync(m.reg.Host(), s, fn, args...)
}

// WaitableRun runs fn on the host thread and returns a waitable handle.
func (m *Main) WaitableRun(caller *proxy.Thread, s sig.Signature, fn threadproxy.Func, args ...threadproxy.Arg) (*proxy.Call, error) {
	return caller.CallAsyncWaitable(m.reg.Host(), s, fn, args...)
}

var (
	sigVoid   = sig.MustEncode(sig.RetVoid)
	sigInt    = sig.MustEncode(sig.RetInt)
	sigDouble = sig.MustEncode(sig.RetDouble)
)

// Run evaluates script on the host thread, discarding any result.
func (m *Main) Run(caller *proxy.Thread, script string) error {
	_, err := m.eval(caller, sigVoid, script)
	return err
}

// RunInt evaluates script on the host thread and returns its result as an
// i32.
func (m *Main) RunInt(caller *proxy.Thread, script string) (int32, error) {
	ret, err := m.eval(caller, sigInt, script)
	if err != nil {
		return 0, err
	}
	switch ret.Type() {
	case sig.RetInt:
		return ret.Int(), nil
	case sig.RetInt64:
		return int32(ret.Int64()), nil
	case sig.RetFloat:
		return int32(ret.Float()), nil
	case sig.RetDouble:
		return int32(ret.Double()), nil
	}
	return 0, nil
}

// RunDouble evaluates script on the host thread and returns its result as
// an f64.
func (m *Main) RunDouble(caller *proxy.Thread, script string) (float64, error) {
	ret, err := m.eval(caller, sigDouble, script)
	if err != nil {
		return 0, err
	}
	switch ret.Type() {
	case sig.RetInt:
		return float64(ret.Int()), nil
	case sig.RetInt64:
		return float64(ret.Int64()), nil
	case sig.RetFloat:
		return float64(ret.Float()), nil
	case sig.RetDouble:
		return ret.Double(), nil
	}
	return 0, nil
}

// eval proxies a script synchronously to the host thread. The evaluator's
// error is captured through the closure; CallSync's full-barrier guarantee
// makes the write visible to the caller.
func (m *Main) eval(caller *proxy.Thread, s sig.Signature, script string) (threadproxy.Ret, error) {
	if m.ev == nil {
		return threadproxy.Void(), errors.NotFound(errors.PhaseEval, "evaluator", "")
	}

	var evalErr error
	ret, err := caller.CallSync(m.reg.Host(), s, func([]threadproxy.Arg) threadproxy.Ret {
		r, err := m.ev.Eval(script)
		if err != nil {
			evalErr = err
			return threadproxy.Void()
		}
		return r
	})
	if err != nil {
		return threadproxy.Void(), err
	}
	if evalErr != nil {
		return threadproxy.Void(), errors.Wrap(errors.PhaseEval, errors.KindInvalidInput, evalErr, "script evaluation failed")
	}
	return ret, nil
}
