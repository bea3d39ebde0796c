package pollloop

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	errs "github.com/wippyai/poll-loop/errors"
	"github.com/wippyai/poll-loop/host"
)

// The host may accept any prefix of each attempt; the sink retries until
// the payload is delivered exactly once, in order.
func TestSink_Send_ArbitraryChunking(t *testing.T) {
	h := host.NewLocal()
	out := h.NewWritable(
		host.Accept(3),
		host.WriteBlock(),
		host.Accept(5),
		host.Accept(1),
	)

	payload := []byte("the quick brown fox")

	loop := New(h)
	err := loop.RunUntilComplete(context.Background(), func(ctx context.Context) error {
		return NewSink(loop, out).Send(ctx, payload)
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !bytes.Equal(h.Written(out), payload) {
		t.Fatalf("expected %q written, got %q", payload, h.Written(out))
	}
	if h.PollCalls() != 1 {
		t.Fatalf("expected 1 poll call, got %d", h.PollCalls())
	}
}

func TestSink_Send_HostError(t *testing.T) {
	h := host.NewLocal()
	cause := stderrors.New("pipe broken")
	out := h.NewWritable(host.Accept(4), host.WriteFail(cause))

	loop := New(h)
	err := loop.RunUntilComplete(context.Background(), func(ctx context.Context) error {
		k := NewSink(loop, out)

		err := k.Send(ctx, []byte("0123456789"))
		if !stderrors.Is(err, errs.SinkWrite(0, nil)) {
			t.Fatalf("expected sink write error, got %v", err)
		}
		if !stderrors.Is(err, cause) {
			t.Fatalf("expected cause to be preserved, got %v", err)
		}

		// Bytes accepted before the failure stay accepted; the handle is
		// finalized and the sink refuses further sends.
		if string(h.Written(out)) != "0123" {
			t.Fatalf("expected prefix %q, got %q", "0123", h.Written(out))
		}
		if !h.Finished(out) {
			t.Fatal("expected handle finalized after write failure")
		}
		if err := k.Send(ctx, []byte("more")); !stderrors.Is(err, errs.SinkClosed()) {
			t.Fatalf("expected closed sink error, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestSink_Send_ZeroAccept(t *testing.T) {
	h := host.NewLocal()
	out := h.NewWritable(host.Accept(0))

	loop := New(h)
	err := loop.RunUntilComplete(context.Background(), func(ctx context.Context) error {
		return NewSink(loop, out).SendString(ctx, "payload")
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if string(h.Written(out)) != "payload" {
		t.Fatalf("expected %q written, got %q", "payload", h.Written(out))
	}
}

func TestSink_Send_Empty(t *testing.T) {
	h := host.NewLocal()
	out := h.NewWritable(host.WriteBlock())

	loop := New(h)
	err := loop.RunUntilComplete(context.Background(), func(ctx context.Context) error {
		return NewSink(loop, out).Send(ctx, nil)
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if h.WriteAttempts(out) != 0 {
		t.Fatalf("expected no write attempts for an empty send, got %d", h.WriteAttempts(out))
	}
}

func TestSink_LastAccepted(t *testing.T) {
	h := host.NewLocal()
	out := h.NewWritable(host.Accept(2), host.Accept(3))

	loop := New(h)
	err := loop.RunUntilComplete(context.Background(), func(ctx context.Context) error {
		k := NewSink(loop, out)
		if err := k.SendString(ctx, "abcde"); err != nil {
			return err
		}
		if k.LastAccepted() != 3 {
			t.Fatalf("expected last accepted 3, got %d", k.LastAccepted())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestSink_Close(t *testing.T) {
	h := host.NewLocal()
	out := h.NewWritable()

	loop := New(h)
	err := loop.RunUntilComplete(context.Background(), func(ctx context.Context) error {
		k := NewSink(loop, out)
		if err := k.SendString(ctx, "done"); err != nil {
			return err
		}
		if err := k.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		if !h.Finished(out) {
			t.Fatal("expected handle finalized on close")
		}
		if err := k.Close(); !stderrors.Is(err, errs.SinkClosed()) {
			t.Fatalf("expected closed sink error on double close, got %v", err)
		}
		if err := k.SendString(ctx, "late"); !stderrors.Is(err, errs.SinkClosed()) {
			t.Fatalf("expected closed sink error on send, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
}
