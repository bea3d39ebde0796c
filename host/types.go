package host

import "context"

// Handle is an opaque reference to a host I/O resource.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Pollable is an opaque reference to one pending readiness condition.
// Pollable 0 is reserved and always invalid. A pollable is single-use:
// it is consumed when the operation that produced it is retried.
type Pollable uint32

// ReadResult is the three-way outcome of a non-blocking read attempt.
// Exactly one of Data (possibly with EOF on a later call), Blocked, or
// EOF describes the outcome; Pollable is set only when Blocked.
type ReadResult struct {
	Data     []byte
	Pollable Pollable
	Blocked  bool
	EOF      bool
}

// WriteResult is the three-way outcome of a non-blocking write attempt.
// Accepted may be less than the bytes offered; Pollable is set only when
// Blocked.
type WriteResult struct {
	Accepted uint64
	Pollable Pollable
	Blocked  bool
}

// Host is the external contract of the component runtime. Read and Write
// never block; PollList blocks the calling goroutine until at least one
// pollable in the list is ready and must return a non-empty ready set for
// any well-formed non-empty input.
type Host interface {
	// Read attempts a non-blocking read of up to max bytes from h.
	Read(h Handle, max uint64) (ReadResult, error)

	// Write attempts a non-blocking write of buf to h.
	Write(h Handle, buf []byte) (WriteResult, error)

	// PollList blocks until at least one pollable is ready and returns
	// the indices of the ready ones. The input list must be non-empty.
	PollList(ctx context.Context, pollables []Pollable) ([]uint32, error)

	// DropPollable releases a consumed pollable.
	DropPollable(p Pollable)

	// CloseRead releases a readable resource handle.
	CloseRead(h Handle)

	// CloseWrite finalizes and releases a writable resource handle.
	CloseWrite(h Handle)
}
