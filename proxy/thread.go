package proxy

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wippyai/thread-proxy/futex"
)

// maxThreadNameLen bounds stored thread names at 32 bytes; longer names
// are truncated on a rune boundary.
const maxThreadNameLen = 32

// Thread is one registered execution context. Any goroutine may enqueue
// calls at a Thread; only the goroutine that owns it may drain the queue.
type Thread struct {
	reg  *Registry
	name atomic.Pointer[string]
	id   uint32

	qmu     sync.Mutex
	queue   []*call
	newWork uint32 // futex cell: 1 while the queue is non-empty

	blockingAllowed bool
}

// ID returns the thread's registry-assigned identifier.
func (t *Thread) ID() uint32 { return t.id }

// Name returns the thread's name.
func (t *Thread) Name() string { return *t.name.Load() }

// SetName renames the thread. Names are UTF-8 and truncated to 32 bytes.
func (t *Thread) SetName(name string) {
	if len(name) > maxThreadNameLen {
		name = truncateUTF8(name, maxThreadNameLen)
	}
	t.name.Store(&name)
}

// IsHost reports whether this thread is the runtime host thread.
func (t *Thread) IsHost() bool { return t.reg.Host() == t }

// BlockingAllowed reports whether this thread may issue blocking dispatches.
func (t *Thread) BlockingAllowed() bool { return t.blockingAllowed }

// enqueue appends a call and wakes the owner if it is blocked on new work.
func (t *Thread) enqueue(c *call) {
	t.qmu.Lock()
	t.queue = append(t.queue, c)
	atomic.StoreUint32(&t.newWork, 1)
	t.qmu.Unlock()

	futex.Wake(&t.newWork, futex.WakeAll)
}

// ProcessQueuedCalls drains and executes, on the calling goroutine, every
// call enqueued for this thread so far. A thread that can be a dispatch
// target must either call this periodically or pass through one of the
// blocking operations, which drain as a side effect.
func (t *Thread) ProcessQueuedCalls() {
	for {
		t.qmu.Lock()
		batch := t.queue
		t.queue = nil
		atomic.StoreUint32(&t.newWork, 0)
		t.qmu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, c := range batch {
			c.execute()
		}
		// Executed calls may have enqueued more work; take another pass so
		// the drain covers everything enqueued before it started.
	}
}

// Sleep pauses the calling goroutine for d while continuing to drain the
// thread's inbound queue, so synchronous callers targeting this thread are
// not starved during the sleep.
func (t *Thread) Sleep(d time.Duration) {
	deadline := time.Now().Add(d)
	for {
		t.ProcessQueuedCalls()
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		// Woken early means new work arrived; the loop drains it.
		_ = futex.Wait(&t.newWork, 0, remaining)
	}
}

// checkBlockingAllowed panics when the thread's policy forbids blocking.
// Violating the policy is a usage error, not a recoverable condition.
func (t *Thread) checkBlockingAllowed() {
	if !t.blockingAllowed {
		panic("proxy: blocking dispatch from thread " + t.Name() + " which disallows blocking")
	}
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
