package cleanup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) CleanupExpired(ctx context.Context) int {
	s.calls.Add(1)
	return 1
}

func TestCleanerSweepsImmediatelyAndOnTick(t *testing.T) {
	sweeper := &countingSweeper{}
	c := NewCleaner(sweeper, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	deadline := time.After(2 * time.Second)
	for sweeper.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 sweeps, got %d", sweeper.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop after cancel")
	}
}

func TestNewCleanerDefaultInterval(t *testing.T) {
	c := NewCleaner(&countingSweeper{}, 0)
	if c.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", c.interval)
	}
}
