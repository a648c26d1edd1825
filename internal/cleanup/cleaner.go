package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes rooms that outlived their timeout and reports how many
type Sweeper interface {
	CleanupExpired(ctx context.Context) int
}

// Cleaner periodically sweeps expired practice rooms
type Cleaner struct {
	sweeper  Sweeper
	interval time.Duration
	done     chan struct{}
}

// NewCleaner creates a new cleanup worker
func NewCleaner(sweeper Sweeper, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = time.Minute
	}

	return &Cleaner{
		sweeper:  sweeper,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the worker has stopped
func (c *Cleaner) Done() <-chan struct{} {
	return c.done
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	defer close(c.done)
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep runs one cleanup cycle
func (c *Cleaner) sweep(ctx context.Context) {
	slog.Debug("running cleanup cycle")

	removed := c.sweeper.CleanupExpired(ctx)
	if removed == 0 {
		slog.Debug("no expired rooms found")
		return
	}

	slog.Info("expired rooms removed", "count", removed)
}
