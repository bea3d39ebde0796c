package main

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestServeOnce_Hello(t *testing.T) {
	res, err := serveOnce("GET", "/hello", "", 1, false, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	if res.Response != "200 OK\nHello, world!" {
		t.Fatalf("unexpected response %q", res.Response)
	}
	if res.Polls != 0 {
		t.Fatalf("expected no readiness rounds, got %d", res.Polls)
	}
}

func TestServeOnce_Delegate(t *testing.T) {
	res, err := serveOnce("GET", "/other", "payload", 3, false, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	if !strings.Contains(res.Response, "delegated /other: payload") {
		t.Fatalf("unexpected response %q", res.Response)
	}
	if res.Polls != 2 {
		t.Fatalf("expected 2 readiness rounds for 3 chunks, got %d", res.Polls)
	}
}

func TestServeOnce_BadMethod(t *testing.T) {
	res, err := serveOnce("POST", "/hello", "", 1, false, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	if res.Response != "400 Bad Request\n" {
		t.Fatalf("unexpected response %q", res.Response)
	}
}

func TestServeOnce_SlowWriter(t *testing.T) {
	res, err := serveOnce("GET", "/hello", "", 1, true, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	if res.Response != "200 OK\nHello, world!" {
		t.Fatalf("unexpected response %q", res.Response)
	}
	if res.Polls == 0 {
		t.Fatal("expected the slow writer to force readiness rounds")
	}
}

func TestBodyScript_Chunking(t *testing.T) {
	steps := bodyScript("abcdef", 3)
	// 3 chunks with a suspension before the second and third.
	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d", len(steps))
	}
	if bodyScript("", 3) != nil {
		t.Fatal("expected no steps for an empty body")
	}
}
