// Package errors provides the structured error type used throughout the
// thread proxy.
//
// Every error carries a Phase (where in processing it occurred) and a Kind
// (what went wrong), so callers can match errors without string comparison:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseDispatch, Kind: errors.KindTypeMismatch}) {
//	    ...
//	}
//
// Errors here describe programming and resource failures only. A timed-out
// wait is a normal outcome of the wait API, never an error from this
// package.
package errors
