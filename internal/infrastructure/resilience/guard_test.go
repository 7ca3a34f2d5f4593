package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

func TestGuardRetriesTransientBackendErrors(t *testing.T) {
	calls := 0
	err := fastGuard().Run(context.Background(), "search", func(context.Context) error {
		calls++
		if calls < 3 {
			return domain.WrapError(domain.ErrVectorStore, "query", errors.New("connection reset"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGuardStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	err := fastGuard().Run(context.Background(), "search", func(context.Context) error {
		calls++
		return domain.WrapError(domain.ErrInvalidInput, "parse", errors.New("empty query"))
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input passed through, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected single attempt, got %d", calls)
	}
}

func TestGuardExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fastGuard().Run(context.Background(), "search", func(context.Context) error {
		calls++
		return domain.WrapError(domain.ErrEmbedding, "embed", errors.New("rate limited"))
	})
	if !domain.IsKind(err, domain.ErrEmbedding) {
		t.Fatalf("expected embedding error after exhaustion, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGuardStopsWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := fastGuard().Run(ctx, "search", func(context.Context) error {
		calls++
		cancel()
		return domain.WrapError(domain.ErrVectorStore, "query", errors.New("transient"))
	})
	if !domain.IsKind(err, domain.ErrVectorStore) {
		t.Fatalf("expected last error when canceled mid-backoff, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retries after cancel, got %d attempts", calls)
	}
}

func TestGuardBreakerOpensOnBackendFailures(t *testing.T) {
	g := NewGuard(Config{
		MaxAttempts:          1,
		InitialBackoff:       time.Millisecond,
		MaxBackoff:           time.Millisecond,
		BackoffMultiplier:    1.0,
		BreakerEnabled:       true,
		BreakerMinRequests:   3,
		BreakerFailureRatio:  0.6,
		BreakerCooldown:      time.Minute,
		BreakerHalfOpenCalls: 1,
	}, ClassifyDomainError)

	backendDown := func(context.Context) error {
		return domain.WrapError(domain.ErrVectorStore, "query", errors.New("down"))
	}
	for i := 0; i < 3; i++ {
		if err := g.Run(context.Background(), "search", backendDown); err == nil {
			t.Fatalf("expected backend error on call %d", i)
		}
	}

	calls := 0
	err := g.Run(context.Background(), "search", func(context.Context) error {
		calls++
		return nil
	})
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected call short-circuited, got %d attempts", calls)
	}
}

func TestGuardBreakerIgnoresQuotaDenials(t *testing.T) {
	g := NewGuard(Config{
		MaxAttempts:          1,
		InitialBackoff:       time.Millisecond,
		MaxBackoff:           time.Millisecond,
		BackoffMultiplier:    1.0,
		BreakerEnabled:       true,
		BreakerMinRequests:   3,
		BreakerFailureRatio:  0.6,
		BreakerCooldown:      time.Minute,
		BreakerHalfOpenCalls: 1,
	}, ClassifyDomainError)

	quotaFull := func(context.Context) error {
		return domain.WrapError(domain.ErrQuotaExceeded, "check", errors.New("full"))
	}
	for i := 0; i < 5; i++ {
		if err := g.Run(context.Background(), "search", quotaFull); !domain.IsKind(err, domain.ErrQuotaExceeded) {
			t.Fatalf("expected quota error on call %d, got %v", i, err)
		}
	}

	if err := g.Run(context.Background(), "search", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected circuit still closed after quota denials, got %v", err)
	}
}

func TestConfigNormalizeFillsDefaults(t *testing.T) {
	got := Config{}.normalize()
	def := DefaultConfig()
	if got.MaxAttempts != def.MaxAttempts {
		t.Fatalf("expected %d attempts, got %d", def.MaxAttempts, got.MaxAttempts)
	}
	if got.InitialBackoff != def.InitialBackoff || got.MaxBackoff < got.InitialBackoff {
		t.Fatalf("expected sane backoff window, got %v..%v", got.InitialBackoff, got.MaxBackoff)
	}
	if got.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("expected failure ratio %v, got %v", def.BreakerFailureRatio, got.BreakerFailureRatio)
	}
}
