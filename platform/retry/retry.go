// Package retry runs startup operations against dependencies that may not be
// reachable yet.
package retry

import (
	"context"
	"fmt"
	"time"

	"leadscore_backend/platform/logger"
)

// Policy waits attempt² × BaseDelay between attempts.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Startup is the policy used by the cmd binaries while dependencies boot.
var Startup = Policy{Attempts: 5, BaseDelay: 2 * time.Second}

func (p Policy) delay(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * p.BaseDelay
}

// Do calls fn until it succeeds, the attempts run out or ctx ends.
func Do(ctx context.Context, log *logger.Logger, p Policy, op string, fn func() error) error {
	if p.Attempts < 1 {
		return fmt.Errorf("%s: retry policy needs at least one attempt", op)
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		log.Warn("startup operation failed", "operation", op, "attempt", attempt, "of", p.Attempts, "error", lastErr)
		if attempt == p.Attempts {
			break
		}

		t := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, log *logger.Logger, p Policy, op string, fn func() (T, error)) (T, error) {
	var out T
	err := Do(ctx, log, p, op, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
