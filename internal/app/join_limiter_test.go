package app

import (
	"testing"
	"time"
)

func TestJoinLimiterWindow(t *testing.T) {
	rl := NewJoinLimiter(2, time.Second)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("first two joins should pass")
	}
	if rl.Allow("a") {
		t.Fatalf("third join inside window should be refused")
	}
	if !rl.Allow("b") {
		t.Fatalf("other connection should not be limited")
	}

	now = now.Add(1100 * time.Millisecond)
	if !rl.Allow("a") {
		t.Fatalf("join after window should pass")
	}
}

func TestJoinLimiterForget(t *testing.T) {
	rl := NewJoinLimiter(1, time.Minute)
	if !rl.Allow("a") {
		t.Fatalf("first join should pass")
	}
	rl.Forget("a")
	if !rl.Allow("a") {
		t.Fatalf("join after forget should pass")
	}
}

func TestJoinLimiterDisabled(t *testing.T) {
	rl := NewJoinLimiter(0, time.Second)
	if rl != nil {
		t.Fatalf("limit 0 should disable the limiter")
	}
	for i := 0; i < 100; i++ {
		if !rl.Allow("a") {
			t.Fatalf("nil limiter refused join %d", i)
		}
	}
	rl.Forget("a")
}

func TestParsePolicy(t *testing.T) {
	for mode, want := range map[string]BackpressureAction{"": DropFrame, "drop": DropFrame, "kick": KickMember} {
		p, err := ParsePolicy(mode)
		if err != nil {
			t.Fatalf("parse %q: %v", mode, err)
		}
		if got := p.OnBackPressure("abc", mem("a")); got != want {
			t.Fatalf("mode %q action=%v, want %v", mode, got, want)
		}
	}
	if _, err := ParsePolicy("retry"); err == nil {
		t.Fatalf("parse retry: want error")
	}
}
