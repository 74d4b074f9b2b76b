package track

import (
	"sync"

	"github.com/wippyai/thread-proxy/errors"
)

// Handle is an opaque reference to an entry in a Table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// EventType identifies a handle lifecycle event.
type EventType uint8

const (
	EventCreated EventType = iota
	EventCompleted
	EventDropped
)

// Event is one lifecycle notification.
type Event[T any] struct {
	Value  T
	Handle Handle
	Type   EventType
}

// Dropper is optionally implemented by tracked values that need cleanup
// when removed.
type Dropper interface {
	Drop()
}

// Table maps handles to in-flight call records. Safe for concurrent use.
type Table[T any] struct {
	entries   []entry[T]
	freeList  []Handle
	observers []func(Event[T])
	mu        sync.RWMutex
	closed    bool
}

type entry[T any] struct {
	value T
	valid bool
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		entries:  make([]entry[T], 0, 16),
		freeList: make([]Handle, 0, 8),
	}
}

// Insert registers a value and returns its handle.
func (t *Table[T]) Insert(value T) (Handle, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, errors.Closed(errors.PhaseQueue, "handle table")
	}

	e := entry[T]{value: value, valid: true}
	var h Handle
	if n := len(t.freeList); n > 0 {
		h = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = e
	} else {
		t.entries = append(t.entries, e)
		h = Handle(len(t.entries))
	}
	t.mu.Unlock()

	t.notify(Event[T]{Type: EventCreated, Handle: h, Value: value})
	return h, nil
}

// Get retrieves a value by handle.
func (t *Table[T]) Get(h Handle) (T, bool) {
	var zero T
	if h == 0 {
		return zero, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := int(h) - 1
	if idx >= len(t.entries) || !t.entries[idx].valid {
		return zero, false
	}
	return t.entries[idx].value, true
}

// Completed notifies observers that the call behind h has finished
// executing. The handle stays live until Remove.
func (t *Table[T]) Completed(h Handle) {
	v, ok := t.Get(h)
	if !ok {
		return
	}
	t.notify(Event[T]{Type: EventCompleted, Handle: h, Value: v})
}

// Remove releases a handle and returns its value. The handle number may be
// recycled by a later Insert.
func (t *Table[T]) Remove(h Handle) (T, bool) {
	var zero T
	if h == 0 {
		return zero, false
	}

	t.mu.Lock()
	idx := int(h) - 1
	if idx >= len(t.entries) || !t.entries[idx].valid {
		t.mu.Unlock()
		return zero, false
	}
	value := t.entries[idx].value
	t.entries[idx] = entry[T]{}
	t.freeList = append(t.freeList, h)
	t.mu.Unlock()

	if d, ok := any(value).(Dropper); ok {
		d.Drop()
	}
	t.notify(Event[T]{Type: EventDropped, Handle: h, Value: value})
	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(fn func(Event[T])) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, e := range t.entries {
		if e.valid {
			n++
		}
	}
	return n
}

// Each iterates over all live handles. Return false to stop.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.valid {
			if !fn(Handle(i+1), e.value) {
				break
			}
		}
	}
}

// Close drops every live handle and stops accepting inserts. It returns a
// leak error when live handles remained, after dropping them.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	leaked := 0
	for i := range t.entries {
		if t.entries[i].valid {
			leaked++
			if d, ok := any(t.entries[i].value).(Dropper); ok {
				d.Drop()
			}
			t.entries[i] = entry[T]{}
		}
	}
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	if leaked > 0 {
		return errors.Leaked(leaked)
	}
	return nil
}

func (t *Table[T]) notify(e Event[T]) {
	t.mu.RLock()
	obs := t.observers
	t.mu.RUnlock()
	for _, fn := range obs {
		fn(e)
	}
}
