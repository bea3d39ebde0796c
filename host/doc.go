// Package host defines the component-runtime contract the scheduler
// drives I/O through, and provides implementations of it.
//
// The contract is three primitives plus resource cleanup:
//
//   - Read: attempt a non-blocking read; Ready(bytes), WouldBlock(pollable),
//     or a stream error
//   - Write: attempt a non-blocking write; the host may accept fewer bytes
//     than offered
//   - PollList: block until at least one pollable in an ordered list is
//     ready, returning the ready indices
//
// Handles and pollables are opaque uint32 tokens owned by the host; the
// scheduler never inspects them. A pollable represents one pending
// readiness condition and is single-use: once its waiter resumes, it must
// be dropped before the next readiness round.
//
// Local is an in-memory host with scripted readiness, used by tests and
// the demo.
package host
