// Package resilience guards the retrieval read path with bounded retries
// and a per-operation circuit breaker. Writes never go through it: retrying
// ingestion would hide its at-least-once contract from callers.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Verdict is what the guard does with a failed call: whether to retry it,
// and whether the breaker should count it against the backend.
type Verdict struct {
	Retryable     bool
	RecordFailure bool
}

type ErrorClassifier func(err error) Verdict

type Guard struct {
	cfg      Config
	classify ErrorClassifier

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewGuard(cfg Config, classify ErrorClassifier) *Guard {
	if classify == nil {
		classify = func(error) Verdict { return Verdict{RecordFailure: true} }
	}
	return &Guard{
		cfg:      cfg.normalize(),
		classify: classify,
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

// Run executes fn under the guard. Operation names the breaker; calls that
// share a name share failure accounting.
func (g *Guard) Run(ctx context.Context, operation string, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("resilience: nil operation for %q", operation)
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unnamed"
	}

	if !g.cfg.BreakerEnabled {
		return g.runWithRetry(ctx, op, fn)
	}
	_, err := g.breakerFor(op).Execute(func() (struct{}, error) {
		return struct{}{}, g.runWithRetry(ctx, op, fn)
	})
	return err
}

func (g *Guard) runWithRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !g.classify(lastErr).Retryable || attempt == g.cfg.MaxAttempts {
			return lastErr
		}

		wait := g.backoffFor(attempt)
		slog.Warn("retrieval_retry",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", g.cfg.MaxAttempts,
			"wait_ms", wait.Milliseconds(),
			"error", lastErr,
		)
		if !sleepCtx(ctx, wait) {
			return lastErr
		}
	}
	return lastErr
}

// backoffFor grows geometrically from the initial wait, capped at MaxBackoff.
func (g *Guard) backoffFor(attempt int) time.Duration {
	wait := g.cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		wait = time.Duration(float64(wait) * g.cfg.BackoffMultiplier)
		if wait >= g.cfg.MaxBackoff {
			return g.cfg.MaxBackoff
		}
	}
	if wait > g.cfg.MaxBackoff {
		wait = g.cfg.MaxBackoff
	}
	return wait
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (g *Guard) breakerFor(operation string) *gobreaker.CircuitBreaker[struct{}] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if breaker, ok := g.breakers[operation]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        operation,
		MaxRequests: g.cfg.BreakerHalfOpenCalls,
		Timeout:     g.cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < g.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= g.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !g.classify(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("breaker_state",
				"operation", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	g.breakers[operation] = breaker
	return breaker
}

// IsCircuitOpen reports whether err is the breaker refusing calls rather
// than a backend failure.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
