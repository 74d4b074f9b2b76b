package proxy

import (
	"sync/atomic"
	"testing"
	"time"

	threadproxy "github.com/wippyai/thread-proxy"
	"github.com/wippyai/thread-proxy/errors"
	"github.com/wippyai/thread-proxy/sig"
)

var (
	sigV  = sig.MustEncode(sig.RetVoid)
	sigVI = sig.MustEncode(sig.RetVoid, sig.ParamInt)
	sigII = sig.MustEncode(sig.RetInt, sig.ParamInt)
)

// drainLoop owns t on a background goroutine until the returned stop
// function is called. The final drain runs after stop so no enqueued call
// is lost.
func drainLoop(t *Thread) (stop func()) {
	var stopped atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !stopped.Load() {
			t.Sleep(time.Millisecond)
		}
		t.ProcessQueuedCalls()
	}()
	return func() {
		stopped.Store(true)
		<-done
	}
}

func TestCallSync_SelfExecutesInPlace(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()

	// A call already enqueued for the host must not run before the
	// in-place call returns.
	queuedRan := false
	if err := host.DispatchAsync(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		queuedRan = true
		return threadproxy.Void()
	}, nil); err != nil {
		t.Fatalf("DispatchAsync: %v", err)
	}

	ret, err := host.CallSync(host, sigII, func(args []threadproxy.Arg) threadproxy.Ret {
		return threadproxy.RetOfInt(args[0].Int() * 2)
	}, threadproxy.Int(21))
	if err != nil {
		t.Fatalf("CallSync: %v", err)
	}
	if ret.Int() != 42 {
		t.Fatalf("ret = %d, want 42", ret.Int())
	}
	if queuedRan {
		t.Fatal("queued call ran before the in-place call returned")
	}

	host.ProcessQueuedCalls()
	if !queuedRan {
		t.Fatal("queued call never ran")
	}
}

func TestCallSync_CrossThread(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()
	worker := reg.NewThread("worker")

	stop := drainLoop(host)
	defer stop()

	var sideEffect int32
	ret, err := worker.CallSync(host, sigII, func(args []threadproxy.Arg) threadproxy.Ret {
		sideEffect = args[0].Int()
		return threadproxy.RetOfInt(args[0].Int() + 1)
	}, threadproxy.Int(7))
	if err != nil {
		t.Fatalf("CallSync: %v", err)
	}
	if ret.Int() != 8 {
		t.Fatalf("ret = %d, want 8", ret.Int())
	}
	// Full barrier: the side effect must be visible after return.
	if sideEffect != 7 {
		t.Fatalf("side effect = %d, want 7", sideEffect)
	}
}

func TestCallAsync_FIFOPerSource(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()
	worker := reg.NewThread("worker")

	const n = 200
	var order []int32
	for i := int32(0); i < n; i++ {
		if err := worker.CallAsync(host, sigVI, func(args []threadproxy.Arg) threadproxy.Ret {
			order = append(order, args[0].Int())
			return threadproxy.Void()
		}, threadproxy.Int(i)); err != nil {
			t.Fatalf("CallAsync: %v", err)
		}
	}

	host.ProcessQueuedCalls()
	if len(order) != n {
		t.Fatalf("executed %d calls, want %d", len(order), n)
	}
	for i := int32(0); i < n; i++ {
		if order[i] != i {
			t.Fatalf("order[%d] = %d, want %d", i, order[i], i)
		}
	}
}

func TestCallSync_MutualCallsDoNotDeadlock(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	a := reg.NewThread("a")
	b := reg.NewThread("b")

	// Both threads synchronously call each other at the same time. The
	// drain-while-blocked behavior must resolve this.
	errs := make(chan error, 2)
	call := func(src, dst *Thread) {
		_, err := src.CallSync(dst, sigV, func([]threadproxy.Arg) threadproxy.Ret {
			return threadproxy.Void()
		})
		errs <- err
	}
	go call(a, b)
	go call(b, a)

	timeout := time.After(5 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			if err != nil {
				t.Fatalf("CallSync: %v", err)
			}
		case <-timeout:
			t.Fatal("mutual synchronous calls deadlocked")
		}
	}
}

func TestCallSync_DrainsCallerQueueBeforeReturn(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()
	worker := reg.NewThread("worker")

	stop := drainLoop(host)
	defer stop()

	// The target enqueues work at the blocked caller right before
	// completing its call. That work must have executed by the time
	// CallSync returns, not sit stranded in the caller's queue.
	var callback atomic.Bool
	_, err := worker.CallSync(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		host.CallAsync(worker, sigV, func([]threadproxy.Arg) threadproxy.Ret {
			callback.Store(true)
			return threadproxy.Void()
		})
		return threadproxy.Void()
	})
	if err != nil {
		t.Fatalf("CallSync: %v", err)
	}
	if !callback.Load() {
		t.Fatal("call enqueued at the blocked caller was not drained before return")
	}
}

func TestDispatch_ReportsInPlace(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()
	worker := reg.NewThread("worker")

	ran := false
	inPlace, err := host.Dispatch(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		ran = true
		return threadproxy.Void()
	}, nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !inPlace {
		t.Fatal("self-directed dispatch should report in-place execution")
	}
	if !ran {
		t.Fatal("in-place dispatch did not run the function")
	}

	inPlace, err = worker.Dispatch(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		return threadproxy.Void()
	}, nil)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if inPlace {
		t.Fatal("cross-thread dispatch should not report in-place execution")
	}
}

func TestDispatchAsync_SelfRunsOnNextDrain(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()

	ran := false
	if err := host.DispatchAsync(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		ran = true
		return threadproxy.Void()
	}, nil); err != nil {
		t.Fatalf("DispatchAsync: %v", err)
	}
	if ran {
		t.Fatal("forced-async self dispatch must not run in place")
	}
	host.ProcessQueuedCalls()
	if !ran {
		t.Fatal("forced-async self dispatch never ran")
	}
}

type dropSatellite struct{ dropped *atomic.Bool }

func (d dropSatellite) Drop() { d.dropped.Store(true) }

func TestDispatch_SatelliteDroppedAfterExecution(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()

	var dropped atomic.Bool
	droppedDuring := false
	if err := host.DispatchAsync(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		droppedDuring = dropped.Load()
		return threadproxy.Void()
	}, dropSatellite{&dropped}); err != nil {
		t.Fatalf("DispatchAsync: %v", err)
	}
	if dropped.Load() {
		t.Fatal("satellite dropped before execution")
	}
	host.ProcessQueuedCalls()
	if droppedDuring {
		t.Fatal("satellite dropped before the function ran")
	}
	if !dropped.Load() {
		t.Fatal("satellite not dropped after execution")
	}
}

func TestDispatch_Validation(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()
	worker := reg.NewThread("worker")

	fn := func([]threadproxy.Arg) threadproxy.Ret { return threadproxy.Void() }

	tests := []struct {
		name string
		kind errors.Kind
		call func() error
	}{
		{"nil target", errors.KindNilPointer, func() error {
			return worker.CallAsync(nil, sigV, fn)
		}},
		{"nil func", errors.KindNilFunc, func() error {
			return worker.CallAsync(host, sigV, nil)
		}},
		{"arg count", errors.KindTypeMismatch, func() error {
			return worker.CallAsync(host, sigVI, fn)
		}},
		{"arg type", errors.KindTypeMismatch, func() error {
			return worker.CallAsync(host, sigVI, fn, threadproxy.Double(1))
		}},
	}
	for _, tt := range tests {
		err := tt.call()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		e, ok := err.(*errors.Error)
		if !ok || e.Kind != tt.kind {
			t.Errorf("%s: error = %v, want kind %s", tt.name, err, tt.kind)
		}
	}
}

func TestCallSync_BlockingDisallowedPanics(t *testing.T) {
	reg := NewRegistry(WithHostOptions(BlockingDisallowed()))
	defer reg.Close()
	host := reg.Host()
	worker := reg.NewThread("worker")

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for blocking dispatch from a non-blocking thread")
		}
	}()
	host.CallSync(worker, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		return threadproxy.Void()
	})
}

func TestDispatch_AfterRegistryClose(t *testing.T) {
	reg := NewRegistry()
	host := reg.Host()
	worker := reg.NewThread("worker")
	reg.Close()

	err := worker.CallAsync(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		return threadproxy.Void()
	})
	if err == nil {
		t.Fatal("expected error after registry close")
	}
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.KindClosed {
		t.Fatalf("error = %v, want kind closed", err)
	}
}
