package host

import (
	"context"
	"errors"
	"testing"
)

func TestLocal_Read_Script(t *testing.T) {
	l := NewLocal()
	cause := errors.New("bad stream")
	h := l.NewReadable(Text("data"), Block(), Fail(cause))

	res, err := l.Read(h, 64)
	if err != nil || res.Blocked || res.EOF || string(res.Data) != "data" {
		t.Fatalf("expected data chunk, got %+v err=%v", res, err)
	}

	res, err = l.Read(h, 64)
	if err != nil || !res.Blocked || res.Pollable == 0 {
		t.Fatalf("expected would-block with pollable, got %+v err=%v", res, err)
	}

	if _, err = l.Read(h, 64); !errors.Is(err, cause) {
		t.Fatalf("expected scripted failure, got %v", err)
	}

	// Exhausted script reports end of stream.
	res, err = l.Read(h, 64)
	if err != nil || !res.EOF {
		t.Fatalf("expected end of stream, got %+v err=%v", res, err)
	}
	if l.ReadAttempts(h) != 4 {
		t.Fatalf("expected 4 attempts, got %d", l.ReadAttempts(h))
	}
}

func TestLocal_Read_RespectsMax(t *testing.T) {
	l := NewLocal()
	h := l.NewReadable(Text("abcdef"))

	res, err := l.Read(h, 4)
	if err != nil || string(res.Data) != "abcd" {
		t.Fatalf("expected abcd, got %+v err=%v", res, err)
	}
	res, err = l.Read(h, 4)
	if err != nil || string(res.Data) != "ef" {
		t.Fatalf("expected ef, got %+v err=%v", res, err)
	}
}

func TestLocal_Write_Script(t *testing.T) {
	l := NewLocal()
	h := l.NewWritable(Accept(2), WriteBlock())

	res, err := l.Write(h, []byte("hello"))
	if err != nil || res.Blocked || res.Accepted != 2 {
		t.Fatalf("expected 2 accepted, got %+v err=%v", res, err)
	}
	res, err = l.Write(h, []byte("llo"))
	if err != nil || !res.Blocked || res.Pollable == 0 {
		t.Fatalf("expected would-block with pollable, got %+v err=%v", res, err)
	}

	// Exhausted script accepts everything offered.
	res, err = l.Write(h, []byte("llo"))
	if err != nil || res.Accepted != 3 {
		t.Fatalf("expected 3 accepted, got %+v err=%v", res, err)
	}
	if string(l.Written(h)) != "hello" {
		t.Fatalf("expected hello, got %q", l.Written(h))
	}
}

func TestLocal_PollList_Countdown(t *testing.T) {
	l := NewLocal()
	h := l.NewReadable(Block(), BlockN(2))

	res1, _ := l.Read(h, 1)
	res2, _ := l.Read(h, 1)
	list := []Pollable{res1.Pollable, res2.Pollable}

	ready, err := l.PollList(context.Background(), list)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 1 || ready[0] != 0 {
		t.Fatalf("expected only index 0 ready, got %v", ready)
	}

	ready, err = l.PollList(context.Background(), list)
	if err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	if len(ready) != 2 {
		t.Fatalf("expected both ready on second poll, got %v", ready)
	}
	if l.PollCalls() != 2 {
		t.Fatalf("expected 2 poll calls, got %d", l.PollCalls())
	}
}

func TestLocal_PollList_Empty(t *testing.T) {
	l := NewLocal()
	if _, err := l.PollList(context.Background(), nil); !errors.Is(err, ErrEmptyPollList) {
		t.Fatalf("expected ErrEmptyPollList, got %v", err)
	}
}

func TestLocal_DropPollable(t *testing.T) {
	l := NewLocal()
	h := l.NewReadable(Block())

	res, _ := l.Read(h, 1)
	if l.Pollables() != 1 {
		t.Fatalf("expected 1 live pollable, got %d", l.Pollables())
	}
	l.DropPollable(res.Pollable)
	if l.Pollables() != 0 {
		t.Fatalf("expected 0 live pollables, got %d", l.Pollables())
	}
}

func TestLocal_Close(t *testing.T) {
	l := NewLocal()
	r := l.NewReadable(Text("x"))
	w := l.NewWritable()

	l.CloseRead(r)
	if _, err := l.Read(r, 1); err == nil {
		t.Fatal("expected read on closed handle to fail")
	}
	if l.ReadAttempts(r) != 1 {
		t.Fatalf("expected attempt counter to survive close, got %d", l.ReadAttempts(r))
	}

	if l.Finished(w) {
		t.Fatal("writable must not be finished before close")
	}
	l.CloseWrite(w)
	if !l.Finished(w) {
		t.Fatal("expected writable finished after close")
	}
	if _, err := l.Write(w, []byte("x")); err == nil {
		t.Fatal("expected write on closed handle to fail")
	}
}
