package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in scheduling the error occurred
type Phase string

const (
	PhaseRead     Phase = "read"     // stream read attempt
	PhaseWrite    Phase = "write"    // sink write attempt
	PhaseClose    Phase = "close"    // resource close
	PhaseSchedule Phase = "schedule" // readiness rounds
)

// Kind categorizes the error
type Kind string

const (
	KindIOFailed          Kind = "io_failed"          // host reported a stream error
	KindClosed            Kind = "closed"             // operation on a closed wrapper
	KindContractViolation Kind = "contract_violation" // host broke the readiness contract
	// KindWouldBlock is internal to the retry layer and must never
	// propagate past Stream/Sink.
	KindWouldBlock Kind = "would_block"
)

// Error is the structured error type used throughout the scheduler
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	Detail   string
	Handle   uint32
	Pollable uint32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Handle != 0 {
		fmt.Fprintf(&b, " handle=%d", e.Handle)
	}
	if e.Pollable != 0 {
		fmt.Fprintf(&b, " pollable=%d", e.Pollable)
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

// Handle sets the host resource handle the error relates to
func (b *Builder) Handle(h uint32) *Builder {
	b.err.Handle = h
	return b
}

// Pollable sets the pollable handle the error relates to
func (b *Builder) Pollable(p uint32) *Builder {
	b.err.Pollable = p
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

// Convenience constructors for the scheduler error taxonomy

// StreamRead creates the non-retryable read failure for a host stream error.
// The stream is considered closed afterward.
func StreamRead(handle uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindIOFailed,
		Handle: handle,
		Cause:  cause,
	}
}

// SinkWrite creates the non-retryable write failure for a host stream error.
// There is no partial-success return path.
func SinkWrite(handle uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindIOFailed,
		Handle: handle,
		Cause:  cause,
	}
}

// StreamClosed creates the misuse error for operating on a closed stream
func StreamClosed() *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindClosed,
		Detail: "stream closed",
	}
}

// SinkClosed creates the misuse error for operating on a closed sink
func SinkClosed() *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindClosed,
		Detail: "sink closed",
	}
}

// ContractViolation creates the fatal error for a host that broke the
// readiness contract. It is never wrapped and never retried.
func ContractViolation(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseSchedule,
		Kind:   KindContractViolation,
		Detail: detail,
	}
}

// WouldBlock creates the internal suspension signal carrying the pollable
// to wait on. The retry layer absorbs it; application code never sees it.
func WouldBlock(pollable uint32) *Error {
	return &Error{
		Phase:    PhaseSchedule,
		Kind:     KindWouldBlock,
		Pollable: pollable,
	}
}
