package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		perMin   int
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial logins", perMin: 10, burst: 5, calls: 5, wantPass: 5},
		{name: "exceeding burst is rejected", perMin: 10, burst: 5, calls: 8, wantPass: 5},
		{name: "single token", perMin: 1, burst: 1, calls: 3, wantPass: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := PerMinute(tt.perMin, tt.burst)
			defer rl.Stop()

			passed := 0
			for range tt.calls {
				if rl.Allow("203.0.113.7") {
					passed++
				}
			}

			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := PerMinute(1, 1)
	defer rl.Stop()

	rl.Allow("10.0.0.1")
	if rl.Allow("10.0.0.1") {
		t.Error("10.0.0.1 should be exhausted")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("10.0.0.2 should have its own bucket")
	}
}

func TestKeyedRateLimiter_WaitContextCanceled(t *testing.T) {
	rl := New(0.1, 1)
	defer rl.Stop()

	rl.Allow("k")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "k"); err == nil {
		t.Error("Wait() should fail once the context expires")
	}
}

func TestKeyedRateLimiter_SweepDropsIdleKeys(t *testing.T) {
	rl := PerMinute(10, 5)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(DefaultIdleTTL + time.Second)
	rl.Allow("fresh")

	rl.sweep()

	if got := rl.Len(); got != 1 {
		t.Fatalf("Len() = %d after sweep, want 1", got)
	}
	// A dropped key starts over with a full bucket.
	for i := range 5 {
		if !rl.Allow("old") {
			t.Fatalf("Allow(old) #%d rejected after sweep", i+1)
		}
	}
}
