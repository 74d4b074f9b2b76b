package proxy

import (
	"testing"

	threadproxy "github.com/wippyai/thread-proxy"
	"github.com/wippyai/thread-proxy/errors"
	"github.com/wippyai/thread-proxy/track"
)

func TestRegistry_HostRole(t *testing.T) {
	reg := NewRegistry(WithHostName("runtime"))
	defer reg.Close()

	host := reg.Host()
	if host == nil {
		t.Fatal("registry must create a host thread")
	}
	if host.Name() != "runtime" {
		t.Fatalf("host name = %q, want runtime", host.Name())
	}
	if !host.IsHost() {
		t.Fatal("host.IsHost() = false")
	}

	worker := reg.NewThread("worker")
	if worker.IsHost() {
		t.Fatal("worker.IsHost() = true")
	}
	if worker.ID() == host.ID() {
		t.Fatal("thread IDs must be unique")
	}
}

func TestRegistry_UIRole(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()

	if reg.UI() != nil {
		t.Fatal("UI thread designated by default")
	}

	// The UI role may coincide with the host.
	reg.DesignateUI(reg.Host())
	if reg.UI() != reg.Host() {
		t.Fatal("UI thread should be the host after designation")
	}

	ui := reg.NewThread("ui")
	reg.DesignateUI(ui)
	if reg.UI() != ui {
		t.Fatal("UI thread not re-designated")
	}
}

func TestRegistry_Threads(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()

	reg.NewThread("a")
	reg.NewThread("b")
	if n := len(reg.Threads()); n != 3 { // host + 2
		t.Fatalf("Threads() returned %d, want 3", n)
	}
}

func TestRegistry_CloseReportsLeakedHandles(t *testing.T) {
	reg := NewRegistry()
	host := reg.Host()
	worker := reg.NewThread("worker")

	c, err := worker.CallAsyncWaitable(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		return threadproxy.Void()
	})
	if err != nil {
		t.Fatalf("CallAsyncWaitable: %v", err)
	}
	host.ProcessQueuedCalls()
	_ = c // never closed: leaked

	err = reg.Close()
	if err == nil {
		t.Fatal("expected leak error from Close")
	}
	e, ok := err.(*errors.Error)
	if !ok || e.Kind != errors.KindLeak {
		t.Fatalf("Close = %v, want leak error", err)
	}
	if err := reg.Close(); err != nil {
		t.Fatalf("second Close = %v, want nil", err)
	}
}

func TestRegistry_WaitableObservers(t *testing.T) {
	reg := NewRegistry()
	defer reg.Close()
	host := reg.Host()
	worker := reg.NewThread("worker")

	var events []track.EventType
	reg.Waitable().Subscribe(func(e track.Event[*Call]) {
		events = append(events, e.Type)
	})

	c, err := worker.CallAsyncWaitable(host, sigV, func([]threadproxy.Arg) threadproxy.Ret {
		return threadproxy.Void()
	})
	if err != nil {
		t.Fatalf("CallAsyncWaitable: %v", err)
	}
	host.ProcessQueuedCalls()
	c.Close()

	want := []track.EventType{track.EventCreated, track.EventCompleted, track.EventDropped}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event[%d] = %d, want %d", i, events[i], want[i])
		}
	}
}
