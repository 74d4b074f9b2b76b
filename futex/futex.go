package futex

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wippyai/thread-proxy/errors"
)

// WakeAll wakes every waiter on a cell when passed as Wake's count.
const WakeAll = int(^uint(0) >> 1)

var (
	// ErrTimedOut is returned by Wait when the timeout elapses before a wake.
	ErrTimedOut = errors.New(errors.PhaseWait, errors.KindTimedOut).Detail("wait timed out").Build()

	// ErrWouldBlock is returned by Wait when the cell's value already
	// differs from the expected value at call time.
	ErrWouldBlock = errors.New(errors.PhaseWait, errors.KindWouldBlock).Detail("value changed before wait").Build()

	// ErrNilAddress is returned when the watched cell pointer is nil.
	ErrNilAddress = errors.NilPointer(errors.PhaseWait, "wait address")
)

// waiter is one blocked Wait call. done has capacity 1 so a waker never
// blocks handing off the wake.
type waiter struct {
	done chan struct{}
}

type table struct {
	mu      sync.Mutex
	waiters map[*uint32][]*waiter
}

var global = &table{waiters: make(map[*uint32][]*waiter)}

// Wait blocks the calling goroutine on addr while *addr == expected.
//
// It returns nil when released by Wake, ErrWouldBlock immediately when the
// cell's value differs from expected at call time, ErrTimedOut when timeout
// elapses first, and ErrNilAddress for a nil addr. A negative timeout waits
// forever.
func Wait(addr *uint32, expected uint32, timeout time.Duration) error {
	if addr == nil {
		return ErrNilAddress
	}

	global.mu.Lock()
	if atomic.LoadUint32(addr) != expected {
		global.mu.Unlock()
		return ErrWouldBlock
	}
	w := &waiter{done: make(chan struct{}, 1)}
	global.waiters[addr] = append(global.waiters[addr], w)
	global.mu.Unlock()

	if timeout < 0 {
		<-w.done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return nil
	case <-timer.C:
	}

	// Timed out, but a wake may have landed between the timer firing and
	// this point. If we are no longer in the table the wake won; report it.
	global.mu.Lock()
	removed := remove(addr, w)
	global.mu.Unlock()
	if !removed {
		<-w.done
		return nil
	}
	return ErrTimedOut
}

// Wake releases up to count goroutines blocked on addr and returns the
// number released. A nil addr wakes nothing.
func Wake(addr *uint32, count int) int {
	if addr == nil || count <= 0 {
		return 0
	}

	global.mu.Lock()
	list := global.waiters[addr]
	n := min(count, len(list))
	woken := list[:n]
	rest := list[n:]
	if len(rest) == 0 {
		delete(global.waiters, addr)
	} else {
		global.waiters[addr] = rest
	}
	global.mu.Unlock()

	for _, w := range woken {
		w.done <- struct{}{}
	}
	return n
}

// remove deletes w from addr's wait list, reporting whether it was present.
// Caller holds the table lock.
func remove(addr *uint32, w *waiter) bool {
	list := global.waiters[addr]
	for i, cand := range list {
		if cand == w {
			list = append(list[:i], list[i+1:]...)
			if len(list) == 0 {
				delete(global.waiters, addr)
			} else {
				global.waiters[addr] = list
			}
			return true
		}
	}
	return false
}
