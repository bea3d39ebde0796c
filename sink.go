package pollloop

import (
	"context"

	errs "github.com/wippyai/poll-loop/errors"
	"github.com/wippyai/poll-loop/host"
)

// Sink wraps a writable host handle. Sends are all-or-error: partial
// acceptance by the host is retried internally and never surfaced. A
// Sink is owned by one frame and must only be used from frames of the
// loop that created it.
type Sink struct {
	loop         *PollLoop
	handle       host.Handle
	lastAccepted uint64
	closed       bool
}

// NewSink wraps a writable handle. The Sink takes ownership: closing it,
// or a write error, finalizes the handle.
func NewSink(l *PollLoop, h host.Handle) *Sink {
	return &Sink{loop: l, handle: h}
}

// Send delivers the whole buffer, suspending the calling frame whenever
// the host cannot accept more. A host write failure finalizes the handle
// and closes the sink; bytes already accepted stay accepted.
func (k *Sink) Send(ctx context.Context, buf []byte) error {
	if k.closed {
		return errs.SinkClosed()
	}
	for off := 0; off < len(buf); {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := k.loop.host.Write(k.handle, buf[off:])
		if err != nil {
			k.closed = true
			k.loop.host.CloseWrite(k.handle)
			return errs.SinkWrite(uint32(k.handle), err)
		}
		if res.Blocked {
			if err := k.loop.park(res.Pollable); err != nil {
				return err
			}
			continue
		}
		k.lastAccepted = res.Accepted
		off += int(res.Accepted)
		if res.Accepted == 0 {
			// The host accepted nothing without blocking; reschedule
			// rather than spin against it.
			if err := k.loop.Yield(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// SendString delivers s. See Send.
func (k *Sink) SendString(ctx context.Context, s string) error {
	return k.Send(ctx, []byte(s))
}

// LastAccepted returns the byte count the host accepted on the most
// recent non-blocked write attempt.
func (k *Sink) LastAccepted() uint64 {
	return k.lastAccepted
}

// Close finalizes the underlying handle. Closing an already-closed sink
// fails.
func (k *Sink) Close() error {
	if k.closed {
		return errs.SinkClosed()
	}
	k.closed = true
	k.loop.host.CloseWrite(k.handle)
	return nil
}
