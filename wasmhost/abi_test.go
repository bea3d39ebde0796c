package wasmhost

import (
	"testing"

	"github.com/wippyai/poll-loop/host"
)

func TestStatus_OK(t *testing.T) {
	s := PackOK(16384)
	n, ok := s.OK()
	if !ok || n != 16384 {
		t.Fatalf("expected ok with 16384, got %d ok=%v", n, ok)
	}
	if _, blocked := s.Blocked(); blocked {
		t.Fatal("ok status must not report blocked")
	}
	if s.EOF() || s.Err() {
		t.Fatal("ok status must not report eof or error")
	}
}

func TestStatus_Blocked(t *testing.T) {
	s := PackBlocked(host.Pollable(0xDEADBEEF))
	p, blocked := s.Blocked()
	if !blocked || p != host.Pollable(0xDEADBEEF) {
		t.Fatalf("expected blocked with pollable, got %d blocked=%v", p, blocked)
	}
	if _, ok := s.OK(); ok {
		t.Fatal("blocked status must not report ok")
	}
}

func TestStatus_EOFAndError(t *testing.T) {
	if !PackEOF().EOF() {
		t.Fatal("expected eof")
	}
	if !PackError().Err() {
		t.Fatal("expected error")
	}
	if _, ok := PackEOF().OK(); ok {
		t.Fatal("eof status must not report ok")
	}
	if _, ok := PackError().OK(); ok {
		t.Fatal("error status must not report ok")
	}
}

func TestStatus_PayloadBounds(t *testing.T) {
	n, ok := PackOK(0xFFFFFFFF).OK()
	if !ok || n != 0xFFFFFFFF {
		t.Fatalf("expected full 32-bit payload, got %d ok=%v", n, ok)
	}
}
