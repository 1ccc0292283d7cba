package booking

import (
	"context"
	"time"
)

// Strategy attempts to extract one value. ok is false when nothing usable
// was found; strategies never return errors.
type Strategy func(ctx context.Context) (value string, ok bool)

// FirstOf runs strategies in order and returns the first hit. Order encodes
// priority, so a later strategy is never consulted once an earlier one hits.
func FirstOf(ctx context.Context, strategies ...Strategy) (string, bool) {
	for _, s := range strategies {
		if ctx.Err() != nil {
			return "", false
		}
		if v, ok := s(ctx); ok {
			return v, true
		}
	}
	return "", false
}

// pause sleeps for d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
