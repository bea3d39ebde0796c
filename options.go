package pollloop

import "go.uber.org/zap"

// Option configures a PollLoop.
type Option func(*PollLoop)

// WithLogger sets the loop's logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *PollLoop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithRoundObserver installs a callback invoked after every readiness
// round. The observer runs on the scheduler goroutine and must not call
// back into the loop.
func WithRoundObserver(fn func(Round)) Option {
	return func(l *PollLoop) {
		l.observer = fn
	}
}
