package pollloop

import (
	"context"

	errs "github.com/wippyai/poll-loop/errors"
	"github.com/wippyai/poll-loop/host"
)

// DefaultReadSize is the per-read byte limit a Stream requests from the
// host unless overridden with WithReadSize.
const DefaultReadSize = 16 * 1024

// Stream wraps a readable host handle as a lazy chunk source. A Stream
// is owned by one frame and must only be used from frames of the loop
// that created it.
type Stream struct {
	loop   *PollLoop
	handle host.Handle
	size   uint64
	closed bool
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithReadSize sets the per-read byte limit.
func WithReadSize(n uint64) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.size = n
		}
	}
}

// NewStream wraps a readable handle. The Stream takes ownership: closing
// it, or a read error, releases the handle.
func NewStream(l *PollLoop, h host.Handle, opts ...StreamOption) *Stream {
	s := &Stream{
		loop:   l,
		handle: h,
		size:   DefaultReadSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next chunk. It suspends the calling frame while the
// host reports no data available. End of stream is (nil, false, nil);
// after that, and after any error, the stream yields nothing further.
// A host read failure releases the handle and closes the stream.
func (s *Stream) Next(ctx context.Context) ([]byte, bool, error) {
	if s.closed {
		return nil, false, errs.StreamClosed()
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		res, err := s.loop.host.Read(s.handle, s.size)
		if err != nil {
			s.closed = true
			s.loop.host.CloseRead(s.handle)
			return nil, false, errs.StreamRead(uint32(s.handle), err)
		}
		if res.Blocked {
			if err := s.loop.park(res.Pollable); err != nil {
				return nil, false, err
			}
			continue
		}
		if res.EOF {
			return nil, false, nil
		}
		return res.Data, true, nil
	}
}

// ReadAll drains the stream into one buffer.
func (s *Stream) ReadAll(ctx context.Context) ([]byte, error) {
	var out []byte
	for {
		chunk, ok, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, chunk...)
	}
}

// Close releases the underlying handle. Closing an already-closed
// stream fails.
func (s *Stream) Close() error {
	if s.closed {
		return errs.StreamClosed()
	}
	s.closed = true
	s.loop.host.CloseRead(s.handle)
	return nil
}
