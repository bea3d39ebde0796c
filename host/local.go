package host

import (
	"context"
	"errors"
	"sync"
)

// ErrEmptyPollList is returned when PollList is called with no pollables,
// which the scheduler contract forbids.
var ErrEmptyPollList = errors.New("poll-list requires a non-empty pollable list")

// ReadStep scripts one outcome of a readable resource.
type ReadStep struct {
	data  []byte
	fail  error
	block int
}

// Chunk scripts a read that immediately yields data.
func Chunk(data []byte) ReadStep {
	return ReadStep{data: data}
}

// Text scripts a read that immediately yields the given string.
func Text(s string) ReadStep {
	return ReadStep{data: []byte(s)}
}

// Block scripts one would-block outcome whose pollable becomes ready at
// the next poll-list call.
func Block() ReadStep {
	return ReadStep{block: 1}
}

// BlockN scripts a would-block outcome whose pollable becomes ready only
// at the nth poll-list call. With n > 1 the first round reports nothing
// ready, which lets tests provoke a host contract violation.
func BlockN(n int) ReadStep {
	return ReadStep{block: n}
}

// Fail scripts a host-reported stream error.
func Fail(err error) ReadStep {
	return ReadStep{fail: err}
}

// WriteStep scripts one outcome of a writable resource.
type WriteStep struct {
	fail   error
	accept uint64
	block  int
}

// Accept scripts a write attempt that accepts at most n bytes.
func Accept(n uint64) WriteStep {
	return WriteStep{accept: n}
}

// WriteBlock scripts one would-block outcome whose pollable becomes ready
// at the next poll-list call.
func WriteBlock() WriteStep {
	return WriteStep{block: 1}
}

// WriteBlockN scripts a would-block outcome ready at the nth poll-list call.
func WriteBlockN(n int) WriteStep {
	return WriteStep{block: n}
}

// WriteFail scripts a host-reported stream error.
func WriteFail(err error) WriteStep {
	return WriteStep{fail: err}
}

type readable struct {
	steps    []ReadStep
	attempts int
	closed   bool
}

type writable struct {
	steps    []WriteStep
	buf      []byte
	attempts int
	closed   bool
	finished bool
}

type pollState struct {
	readyAfter int
}

// Local is an in-memory Host with scripted readiness, for tests and the
// demo. Pollables become ready on a poll-list countdown rather than by
// blocking: a Block() pollable is ready at the first poll-list call that
// includes it, a BlockN(n) pollable at the nth.
type Local struct {
	resources *Table
	pollCalls int
	mu        sync.Mutex
}

// NewLocal creates an empty local host.
func NewLocal() *Local {
	return &Local{resources: NewTable()}
}

// NewReadable registers a readable resource following the scripted steps.
// When the script is exhausted the resource reports end-of-stream.
func (l *Local) NewReadable(steps ...ReadStep) Handle {
	return Handle(l.resources.Add(&readable{steps: steps}))
}

// NewWritable registers a writable resource following the scripted steps.
// When the script is exhausted the resource accepts everything offered.
func (l *Local) NewWritable(steps ...WriteStep) Handle {
	return Handle(l.resources.Add(&writable{steps: steps}))
}

// Read implements Host.
func (l *Local) Read(h Handle, max uint64) (ReadResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.getReadable(h)
	if !ok {
		return ReadResult{}, errors.New("unknown read handle")
	}
	r.attempts++
	if r.closed {
		return ReadResult{}, errors.New("read handle closed")
	}

	if len(r.steps) == 0 {
		return ReadResult{EOF: true}, nil
	}

	step := &r.steps[0]
	switch {
	case step.fail != nil:
		fail := step.fail
		r.steps = r.steps[1:]
		return ReadResult{}, fail
	case step.block > 0:
		p := l.newPollable(step.block)
		r.steps = r.steps[1:]
		return ReadResult{Blocked: true, Pollable: p}, nil
	default:
		if uint64(len(step.data)) > max {
			out := step.data[:max]
			step.data = step.data[max:]
			return ReadResult{Data: out}, nil
		}
		out := step.data
		r.steps = r.steps[1:]
		return ReadResult{Data: out}, nil
	}
}

// Write implements Host.
func (l *Local) Write(h Handle, buf []byte) (WriteResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.getWritable(h)
	if !ok {
		return WriteResult{}, errors.New("unknown write handle")
	}
	w.attempts++
	if w.closed {
		return WriteResult{}, errors.New("write handle closed")
	}

	if len(w.steps) == 0 {
		w.buf = append(w.buf, buf...)
		return WriteResult{Accepted: uint64(len(buf))}, nil
	}

	step := w.steps[0]
	w.steps = w.steps[1:]
	switch {
	case step.fail != nil:
		return WriteResult{}, step.fail
	case step.block > 0:
		return WriteResult{Blocked: true, Pollable: l.newPollable(step.block)}, nil
	default:
		n := step.accept
		if n > uint64(len(buf)) {
			n = uint64(len(buf))
		}
		w.buf = append(w.buf, buf[:n]...)
		return WriteResult{Accepted: n}, nil
	}
}

// PollList implements Host. Readiness is a countdown: each call decrements
// every pending pollable in the list and reports the ones that reached
// zero, in list order.
func (l *Local) PollList(_ context.Context, pollables []Pollable) ([]uint32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(pollables) == 0 {
		return nil, ErrEmptyPollList
	}
	l.pollCalls++

	ready := make([]uint32, 0, len(pollables))
	for i, p := range pollables {
		v, ok := l.resources.Get(uint32(p))
		if !ok {
			continue
		}
		ps, ok := v.(*pollState)
		if !ok {
			continue
		}
		if ps.readyAfter > 0 {
			ps.readyAfter--
		}
		if ps.readyAfter == 0 {
			ready = append(ready, uint32(i))
		}
	}
	return ready, nil
}

// DropPollable implements Host.
func (l *Local) DropPollable(p Pollable) {
	l.resources.Remove(uint32(p))
}

// CloseRead implements Host. The resource stays in the table so tests can
// still query its attempt counter, but any further read fails.
func (l *Local) CloseRead(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.getReadable(h); ok {
		r.closed = true
	}
}

// CloseWrite implements Host.
func (l *Local) CloseWrite(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.getWritable(h); ok {
		w.closed = true
		w.finished = true
	}
}

// Written returns the bytes accepted downstream for a writable handle.
func (l *Local) Written(h Handle) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.getWritable(h); ok {
		out := make([]byte, len(w.buf))
		copy(out, w.buf)
		return out
	}
	return nil
}

// Finished reports whether a writable handle was finalized by CloseWrite.
func (l *Local) Finished(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.getWritable(h); ok {
		return w.finished
	}
	return false
}

// ReadAttempts returns how many read attempts were made on a handle,
// including attempts after close.
func (l *Local) ReadAttempts(h Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.getReadable(h); ok {
		return r.attempts
	}
	return 0
}

// WriteAttempts returns how many write attempts were made on a handle.
func (l *Local) WriteAttempts(h Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.getWritable(h); ok {
		return w.attempts
	}
	return 0
}

// PollCalls returns how many times PollList was invoked.
func (l *Local) PollCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pollCalls
}

// Pollables returns the number of live pollables, for leak assertions.
func (l *Local) Pollables() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	l.resources.Each(func(_ uint32, v any) bool {
		if _, isPoll := v.(*pollState); isPoll {
			count++
		}
		return true
	})
	return count
}

func (l *Local) newPollable(readyAfter int) Pollable {
	return Pollable(l.resources.Add(&pollState{readyAfter: readyAfter}))
}

func (l *Local) getReadable(h Handle) (*readable, bool) {
	v, ok := l.resources.Get(uint32(h))
	if !ok {
		return nil, false
	}
	r, ok := v.(*readable)
	return r, ok
}

func (l *Local) getWritable(h Handle) (*writable, bool) {
	v, ok := l.resources.Get(uint32(h))
	if !ok {
		return nil, false
	}
	w, ok := v.(*writable)
	return w, ok
}
