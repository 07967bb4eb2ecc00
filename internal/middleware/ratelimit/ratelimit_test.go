package ratelimit

import "testing"

func TestLimiter_Allow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over the window limit should be denied")
	}
}

func TestLimiter_PerClient(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first client should be allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("a different client should have its own window")
	}
}

func TestLimiter_ZeroConfigFallsBack(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	want := DefaultConfig().RequestsPerMinute
	for i := 0; i < want; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed under the default limit", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over the default limit should be denied")
	}
}
