package ratelimiter

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllow_BurstThenDeny(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow("src") {
			t.Fatalf("request %d should be within burst", i)
		}
	}
	if rl.Allow("src") {
		t.Fatalf("burst exhausted, request should be denied")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

	if !rl.Allow("a") {
		t.Fatalf("first request for a should pass")
	}
	if rl.Allow("a") {
		t.Fatalf("a is exhausted")
	}
	if !rl.Allow("b") {
		t.Fatalf("b has its own bucket")
	}
}

func TestAllow_Refills(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 100, MaxBurst: 1})

	if !rl.Allow("src") {
		t.Fatalf("first request should pass")
	}
	if rl.Allow("src") {
		t.Fatalf("bucket should be empty")
	}

	time.Sleep(50 * time.Millisecond)

	if !rl.Allow("src") {
		t.Fatalf("bucket should have refilled")
	}
}

func TestRemaining(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 5})

	if got := rl.Remaining("src"); got != 5 {
		t.Fatalf("fresh bucket should be full, got %d", got)
	}
	rl.Allow("src")
	if got := rl.Remaining("src"); got != 4 {
		t.Fatalf("expected 4 remaining, got %d", got)
	}
}

func TestGetSourceKey(t *testing.T) {
	rl := New(Options{SourceHeaderKey: "X-Forwarded-For"})

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if got := rl.GetSourceKey(r); got != "10.0.0.1:1234" {
		t.Fatalf("should fall back to remote addr, got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := rl.GetSourceKey(r); got != "203.0.113.9" {
		t.Fatalf("header should win, got %q", got)
	}
}
