package pollloop

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	errs "github.com/wippyai/poll-loop/errors"
	"github.com/wippyai/poll-loop/host"
)

// PollLoop drives one asynchronous computation tree over a Host. All
// frames run on the loop's discipline: at most one frame executes at a
// time, and suspended frames are resumed only when the host reports
// their pollables ready.
type PollLoop struct {
	host     host.Host
	log      *zap.Logger
	observer func(Round)
	cur      *run
}

// New creates a loop over the given host.
func New(h host.Host, opts ...Option) *PollLoop {
	l := &PollLoop{
		host: h,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type frameEventKind uint8

const (
	evPark frameEventKind = iota
	evRootDone
	evGather
	evChildDone
)

// frameEvent is a frame handing control back to the scheduler.
type frameEvent struct {
	ctx      context.Context
	w        *waiter
	g        *gatherGroup
	children []func(context.Context) error
	err      error
	kind     frameEventKind
}

// runnable is a frame the scheduler may hand control to: a parked waiter
// to resume, a gather parent whose children finished, or a child frame
// not yet started.
type runnable struct {
	w     *waiter
	g     *gatherGroup
	start func()
	err   error
}

// run is the state of one RunUntilComplete invocation.
type run struct {
	events    chan frameEvent
	waiters   []*waiter
	resumable []runnable
	rootErr   error
	fatal     error
	seq       uint64
	running   int
	rootDone  bool
}

// RunUntilComplete executes fn as the root frame and drives the whole
// computation tree until it completes, returning fn's error. A fatal
// scheduling error supersedes the root result. The loop drives one
// computation at a time; a nested call fails.
func (l *PollLoop) RunUntilComplete(ctx context.Context, fn func(context.Context) error) error {
	if l.cur != nil {
		return errs.ContractViolation("RunUntilComplete re-entered while a computation is running")
	}
	r := &run{events: make(chan frameEvent)}
	l.cur = r
	defer func() { l.cur = nil }()

	r.running = 1
	go func() {
		r.events <- frameEvent{kind: evRootDone, err: fn(ctx)}
	}()

	return l.schedule(ctx, r)
}

// Run executes fn on the loop and returns its value alongside the
// scheduling outcome.
func Run[T any](ctx context.Context, l *PollLoop, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := l.RunUntilComplete(ctx, func(ctx context.Context) error {
		var ferr error
		out, ferr = fn(ctx)
		return ferr
	})
	return out, err
}

// Yield suspends the calling frame and reschedules it within the current
// round, letting other runnable frames execute first.
func (l *PollLoop) Yield(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.park()
}

// Gather runs fns as child frames of the caller and suspends until all
// of them finish, returning the first error. Children join the caller's
// computation tree: their suspended waits share readiness rounds with
// every other frame on the loop.
func (l *PollLoop) Gather(ctx context.Context, fns ...func(context.Context) error) error {
	if len(fns) == 0 {
		return nil
	}
	r := l.cur
	if r == nil {
		return errs.ContractViolation("Gather outside RunUntilComplete")
	}
	g := &gatherGroup{
		done:      make(chan error, 1),
		remaining: len(fns),
	}
	r.events <- frameEvent{kind: evGather, ctx: ctx, g: g, children: fns}
	return <-g.done
}

// schedule is the loop proper. It keeps exactly one frame running at a
// time, drains runnable frames in FIFO order, and consults the host's
// readiness primitive only at quiescence, when every live frame is
// suspended on pollables.
func (l *PollLoop) schedule(ctx context.Context, r *run) error {
	for {
		if r.running > 0 {
			l.handle(r, <-r.events)
			continue
		}

		if len(r.resumable) > 0 {
			l.runNext(r)
			continue
		}

		if r.rootDone {
			if len(r.waiters) > 0 {
				l.failAll(r, errs.ContractViolation("%d suspended frames outlived the root computation", len(r.waiters)))
				continue
			}
			if r.fatal != nil {
				return r.fatal
			}
			return r.rootErr
		}

		if len(r.waiters) == 0 {
			return errs.ContractViolation("scheduler quiescent with no suspended frames")
		}

		if err := l.pollRound(ctx, r); err != nil {
			l.failAll(r, err)
		}
	}
}

func (l *PollLoop) handle(r *run, ev frameEvent) {
	r.running--

	switch ev.kind {
	case evPark:
		if len(ev.w.pollables) == 0 {
			r.resumable = append(r.resumable, runnable{w: ev.w})
		} else {
			r.waiters = append(r.waiters, ev.w)
		}

	case evRootDone:
		r.rootDone = true
		r.rootErr = ev.err

	case evGather:
		for _, fn := range ev.children {
			fn := fn
			gctx := ev.ctx
			g := ev.g
			r.resumable = append(r.resumable, runnable{start: func() {
				go func() {
					err := fn(gctx)
					r.events <- frameEvent{kind: evChildDone, g: g, err: err}
				}()
			}})
		}

	case evChildDone:
		g := ev.g
		g.remaining--
		if g.err == nil && ev.err != nil {
			g.err = ev.err
		}
		if g.remaining == 0 {
			r.resumable = append(r.resumable, runnable{g: g})
		}
	}
}

// runNext hands control to the frame at the head of the runnable queue.
func (l *PollLoop) runNext(r *run) {
	rn := r.resumable[0]
	r.resumable = r.resumable[1:]
	r.running++

	switch {
	case rn.start != nil:
		rn.start()
	case rn.g != nil:
		rn.g.done <- rn.g.err
	default:
		rn.w.resume <- rn.err
	}
}

// pollRound flattens the pollables of every suspended frame in frame
// registration order, blocks on the host's readiness primitive, and
// queues the owning frames of the ready pollables for resumption. Every
// pollable of a resumed frame is released before the next round.
func (l *PollLoop) pollRound(ctx context.Context, r *run) error {
	r.seq++

	var polled []host.Pollable
	var owners []*waiter
	for _, w := range r.waiters {
		for _, p := range w.pollables {
			polled = append(polled, p)
			owners = append(owners, w)
		}
	}

	l.log.Debug("readiness round",
		zap.Uint64("round", r.seq),
		zap.Int("waiters", len(r.waiters)),
		zap.Int("pollables", len(polled)))

	start := time.Now()
	ready, err := l.host.PollList(ctx, polled)
	waited := time.Since(start)
	if err != nil {
		return errs.New(errs.PhaseSchedule, errs.KindContractViolation).
			Detail("readiness primitive failed").
			Cause(err).
			Build()
	}
	if len(ready) == 0 {
		return errs.ContractViolation("readiness primitive returned an empty ready set for %d pollables", len(polled))
	}

	slices.Sort(ready)

	resumed := make(map[*waiter]bool, len(ready))
	var order []*waiter
	for _, idx := range ready {
		if int(idx) >= len(polled) {
			return errs.ContractViolation("ready index %d outside polled list of %d", idx, len(polled))
		}
		w := owners[idx]
		if !resumed[w] {
			resumed[w] = true
			order = append(order, w)
		}
	}

	for _, w := range order {
		l.release(w)
	}

	var keep []*waiter
	for _, w := range r.waiters {
		if !resumed[w] {
			keep = append(keep, w)
		}
	}
	r.waiters = keep

	for _, w := range order {
		r.resumable = append(r.resumable, runnable{w: w})
	}

	if l.observer != nil {
		ids := make([]string, len(order))
		for i, w := range order {
			ids[i] = w.id
		}
		l.observer(Round{
			Seq:     r.seq,
			Polled:  slices.Clone(polled),
			Ready:   slices.Clone(ready),
			Resumed: ids,
			Waited:  waited,
		})
	}
	return nil
}

// failAll unwinds the run: every suspended frame is resumed with the
// fatal error so its goroutine can exit, and the error becomes the
// result of RunUntilComplete.
func (l *PollLoop) failAll(r *run, fatal error) {
	if r.fatal == nil {
		r.fatal = fatal
	}
	l.log.Error("scheduling aborted", zap.Error(r.fatal))

	for _, w := range r.waiters {
		l.release(w)
		r.resumable = append(r.resumable, runnable{w: w, err: r.fatal})
	}
	r.waiters = nil
}

// release drops every pollable a frame was suspended on.
func (l *PollLoop) release(w *waiter) {
	for _, p := range w.pollables {
		l.host.DropPollable(p)
	}
	w.pollables = nil
}
