// Package errors provides structured error types for the scheduler.
//
// Errors carry a Phase (where in scheduling the failure happened) and a
// Kind (what went wrong), plus optional handle context. Matching with
// errors.Is compares Phase and Kind, so callers can test for a category
// without holding the original value:
//
//	if errors.Is(err, schederrors.StreamClosed()) { ... }
//
// The taxonomy is small by design: io_failed wraps host stream errors,
// closed flags misuse after close, contract_violation is the fatal signal
// for a host that broke the readiness contract, and would_block is the
// internal suspension marker the retry layer absorbs.
package errors
