// Package metrics instruments the scheduler's readiness rounds with
// Prometheus counters via the loop's round observer hook.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	pollloop "github.com/wippyai/poll-loop"
)

// Collector holds the scheduler metrics. Its Observe method satisfies
// the loop's round observer signature.
type Collector struct {
	Rounds         prometheus.Counter
	Resumes        prometheus.Counter
	PollablesTotal prometheus.Counter
	RoundWait      prometheus.Histogram
}

// NewCollector creates the metric set.
func NewCollector() *Collector {
	return &Collector{
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pollloop_rounds_total",
			Help: "Readiness rounds completed.",
		}),
		Resumes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pollloop_resumes_total",
			Help: "Frames resumed by readiness rounds.",
		}),
		PollablesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pollloop_pollables_polled_total",
			Help: "Pollables handed to the readiness primitive.",
		}),
		RoundWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pollloop_round_wait_seconds",
			Help:    "Time spent blocked in the readiness primitive per round.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Register registers all metrics with reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, m := range []prometheus.Collector{c.Rounds, c.Resumes, c.PollablesTotal, c.RoundWait} {
		if err := reg.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// Observe records one readiness round. Install it on the loop with
// pollloop.WithRoundObserver(c.Observe).
func (c *Collector) Observe(r pollloop.Round) {
	c.Rounds.Inc()
	c.Resumes.Add(float64(len(r.Resumed)))
	c.PollablesTotal.Add(float64(len(r.Polled)))
	c.RoundWait.Observe(r.Waited.Seconds())
}
