package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	pollloop "github.com/wippyai/poll-loop"
	"github.com/wippyai/poll-loop/host"
)

func TestCollector_Register(t *testing.T) {
	c := NewCollector()
	reg := prometheus.NewRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := c.Register(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestCollector_Observe(t *testing.T) {
	c := NewCollector()

	c.Observe(pollloop.Round{
		Seq:     1,
		Polled:  []host.Pollable{1, 2, 3},
		Ready:   []uint32{0, 2},
		Resumed: []string{"a", "b"},
		Waited:  time.Millisecond,
	})
	c.Observe(pollloop.Round{
		Seq:     2,
		Polled:  []host.Pollable{4},
		Ready:   []uint32{0},
		Resumed: []string{"c"},
	})

	if got := testutil.ToFloat64(c.Rounds); got != 2 {
		t.Errorf("expected 2 rounds, got %v", got)
	}
	if got := testutil.ToFloat64(c.Resumes); got != 3 {
		t.Errorf("expected 3 resumes, got %v", got)
	}
	if got := testutil.ToFloat64(c.PollablesTotal); got != 4 {
		t.Errorf("expected 4 pollables, got %v", got)
	}
}

func TestCollector_ObservesLoopRounds(t *testing.T) {
	h := host.NewLocal()
	in := h.NewReadable(host.Text("x"), host.Block(), host.Text("y"))

	c := NewCollector()
	loop := pollloop.New(h, pollloop.WithRoundObserver(c.Observe))

	_, err := pollloop.Run(context.Background(), loop, func(ctx context.Context) ([]byte, error) {
		return pollloop.NewStream(loop, in).ReadAll(ctx)
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got := testutil.ToFloat64(c.Rounds); got != 1 {
		t.Errorf("expected 1 round, got %v", got)
	}
	if got := testutil.ToFloat64(c.Resumes); got != 1 {
		t.Errorf("expected 1 resume, got %v", got)
	}
}
