// Package futex provides a wait-on-address synchronization primitive.
//
// A waiter blocks on a uint32 cell conditional on its current value:
//
//	if futex.Wait(&cell, 0, time.Second) == nil {
//	    // woken by futex.Wake
//	}
//
// Wait returns immediately with ErrWouldBlock when the cell already differs
// from the expected value, blocks until a Wake directed at the same cell
// otherwise, and returns ErrTimedOut when the timeout elapses first. Wake
// releases up to count waiters on a cell and reports how many it released.
//
// This is the primitive underneath every blocking operation of the proxy:
// a queued call's completion flag and a thread's new-work flag are both
// futex cells.
package futex
