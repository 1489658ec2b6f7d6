package summary

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Recomputer runs a full recompute.
type Recomputer interface {
	Recompute(ctx context.Context) (*Result, error)
}

// Coalescer allows at most one recompute in flight. A trigger that arrives
// while a run is in progress marks the board dirty and returns at once with
// a nil result; the caller that owns the running recompute then runs once
// more so the trigger's change is reflected.
type Coalescer struct {
	next   Recomputer
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	pending bool
}

// NewCoalescer wraps next.
func NewCoalescer(next Recomputer, logger *slog.Logger) *Coalescer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coalescer{next: next, logger: logger}
}

// Recompute runs next, or records a pending run if one is already active.
func (c *Coalescer) Recompute(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.running {
		c.pending = true
		c.mu.Unlock()
		c.logger.Debug("recompute coalesced")
		return nil, nil
	}
	c.running = true
	c.mu.Unlock()

	var errs []error
	for {
		result, err := c.next.Recompute(ctx)
		if err != nil {
			errs = append(errs, err)
		}

		c.mu.Lock()
		if !c.pending || ctx.Err() != nil {
			c.running = false
			c.pending = false
			c.mu.Unlock()
			return result, errors.Join(errs...)
		}
		c.pending = false
		c.mu.Unlock()
	}
}
