package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

func TestCheckCapacityAllowsExactFit(t *testing.T) {
	backend := &backendFake{usage: domain.StorageUsage{Bytes: 60}}
	m := NewQuotaMonitor(backend, 100, nil)

	if err := m.CheckCapacity(context.Background(), 40); err != nil {
		t.Fatalf("expected exact fit allowed, got %v", err)
	}
}

func TestCheckCapacityDeniesOverflow(t *testing.T) {
	backend := &backendFake{usage: domain.StorageUsage{Bytes: 60, Vectors: 12}}
	m := NewQuotaMonitor(backend, 100, nil)

	err := m.CheckCapacity(context.Background(), 41)
	if !domain.IsKind(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}

	var qe *domain.QuotaError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QuotaError, got %T", err)
	}
	if qe.Status.BytesUsed != 60 || qe.Estimated != 41 {
		t.Fatalf("expected snapshot 60 used and 41 estimated, got %d and %d",
			qe.Status.BytesUsed, qe.Estimated)
	}
}

func TestCheckCapacityRefetchesUsage(t *testing.T) {
	backend := &backendFake{usage: domain.StorageUsage{Bytes: 10}}
	m := NewQuotaMonitor(backend, 100, nil)

	if err := m.CheckCapacity(context.Background(), 50); err != nil {
		t.Fatalf("expected first check allowed, got %v", err)
	}

	// Another writer filled the store in between; the next decision must see it.
	backend.usage.Bytes = 95
	if err := m.CheckCapacity(context.Background(), 50); !domain.IsKind(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected denial after usage grew, got %v", err)
	}
}

func TestStatusPercentUsed(t *testing.T) {
	backend := &backendFake{usage: domain.StorageUsage{Bytes: 512 << 20, Vectors: 1000}}
	m := NewQuotaMonitor(backend, 2<<30, nil)

	status, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if status.PercentUsed != 25 {
		t.Fatalf("expected 25 percent used, got %v", status.PercentUsed)
	}
	if status.QuotaLimitBytes != 2<<30 || status.Vectors != 1000 {
		t.Fatalf("expected limit and vector count carried through, got %+v", status)
	}
}

func TestQuotaDefaultLimit(t *testing.T) {
	backend := &backendFake{}
	m := NewQuotaMonitor(backend, 0, nil)

	if m.limit != domain.DefaultQuotaLimitBytes {
		t.Fatalf("expected default limit %d, got %d", domain.DefaultQuotaLimitBytes, m.limit)
	}
}

func TestStatusPropagatesBackendError(t *testing.T) {
	backend := &backendFake{
		usageErr: domain.WrapError(domain.ErrVectorStore, "describe index", errors.New("boom")),
	}
	m := NewQuotaMonitor(backend, 100, nil)

	if _, err := m.Status(context.Background()); !domain.IsKind(err, domain.ErrVectorStore) {
		t.Fatalf("expected vector store error, got %v", err)
	}
}
