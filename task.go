package pollloop

import (
	"github.com/google/uuid"

	errs "github.com/wippyai/poll-loop/errors"
	"github.com/wippyai/poll-loop/host"
)

// waiter is one suspended frame: its identity, the pollables it is
// blocked on (empty for a yield), and the channel its resumption is
// delivered through.
type waiter struct {
	id        string
	resume    chan error
	pollables []host.Pollable
}

func newWaiter(pollables []host.Pollable) *waiter {
	return &waiter{
		id:        uuid.NewString(),
		resume:    make(chan error, 1),
		pollables: pollables,
	}
}

// park suspends the calling frame until the scheduler resumes it. The
// returned error is nil for a satisfied wait and the fatal scheduling
// error when the run is unwinding.
func (l *PollLoop) park(pollables ...host.Pollable) error {
	r := l.cur
	if r == nil {
		return errs.ContractViolation("await outside RunUntilComplete")
	}
	w := newWaiter(pollables)
	r.events <- frameEvent{kind: evPark, w: w}
	return <-w.resume
}

// gatherGroup tracks one Gather call: how many children are still
// running and the first error any of them produced.
type gatherGroup struct {
	done      chan error
	err       error
	remaining int
}
