package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode   Phase = "encode"   // signature construction
	PhaseDispatch Phase = "dispatch" // call dispatch and argument marshalling
	PhaseWait     Phase = "wait"     // wait/wake primitives and waitable calls
	PhaseQueue    Phase = "queue"    // inbound queue operations
	PhaseEval     Phase = "eval"     // host-thread script evaluation
	PhaseBind     Phase = "bind"     // wasm function binding
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch  Kind = "type_mismatch"
	KindTooManyParams Kind = "too_many_params"
	KindInvalidInput  Kind = "invalid_input"
	KindNilFunc       Kind = "nil_func"
	KindNilPointer    Kind = "nil_pointer"
	KindAllocation    Kind = "allocation"
	KindClosed        Kind = "closed"
	KindNotFound      Kind = "not_found"
	KindUnsupported   Kind = "unsupported"
	KindLeak          Kind = "leak"

	// Futex-level wait outcomes. At the waitable-call level a timeout is a
	// normal Outcome, not an error; these kinds exist for the primitive's
	// sentinel returns only.
	KindTimedOut   Kind = "timed_out"
	KindWouldBlock Kind = "would_block"
)

// Error is the structured error type used throughout the proxy
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TooManyParams reports a signature with more parameters than the scheme
// can encode
func TooManyParams(n int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindTooManyParams,
		Detail: fmt.Sprintf("%d parameters exceeds the maximum of 12", n),
		Value:  n,
	}
}

// InvalidRetType reports an out-of-range return class
func InvalidRetType(v uint8) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("return class %d out of range", v),
		Value:  v,
	}
}

// InvalidParamType reports a parameter tag that cannot be packed, including
// the extended GL-query tags
func InvalidParamType(slot int, v uint8) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidInput,
		Path:   []string{fmt.Sprintf("param[%d]", slot)},
		Detail: fmt.Sprintf("type tag %d not encodable in a parameter slot", v),
		Value:  v,
	}
}

// InvalidSignatureText reports an unparseable letter-form signature
func InvalidSignatureText(text, why string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("signature %q: %s", text, why),
		Value:  text,
	}
}

// NilFunc reports a nil function passed to a dispatch entry point
func NilFunc(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilFunc,
		Detail: "nil function",
	}
}

// NilPointer reports a nil required pointer
func NilPointer(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Detail: fmt.Sprintf("nil %s", what),
	}
}

// ArgCountMismatch reports an argument list whose length does not match the
// signature's parameter count
func ArgCountMismatch(want, got int) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("signature declares %d parameters, got %d arguments", want, got),
		Value:  got,
	}
}

// ArgTypeMismatch reports an argument whose tag differs from the signature's
// slot tag
func ArgTypeMismatch(slot int, want, got string) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindTypeMismatch,
		Path:   []string{fmt.Sprintf("arg[%d]", slot)},
		Detail: fmt.Sprintf("signature wants %s, argument is %s", want, got),
	}
}

// Closed reports an operation on a closed or already-released object
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// AllocationFailed reports handle or record allocation failure
func AllocationFailed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %s", what),
	}
}

// Leaked reports waitable-call handles still live when their registry closed
func Leaked(n int) *Error {
	return &Error{
		Phase:  PhaseQueue,
		Kind:   KindLeak,
		Detail: fmt.Sprintf("%d waitable call handle(s) never released", n),
		Value:  n,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
