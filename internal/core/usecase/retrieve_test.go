package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
)

func newRetrieveFixture(backend *backendFake) *RetrieveUseCase {
	return NewRetrieveUseCase(
		&resolverFake{city: "paris", country: "france"},
		&embedderFake{},
		backend,
		5,
		nil,
	)
}

func TestRetrieveCascadeOrder(t *testing.T) {
	backend := &backendFake{
		unfiltered: map[string][]domain.RetrievedChunk{
			"paris":   {hit("paris.pdf", 0, 0.4)},
			"france":  {hit("france.pdf", 0, 0.9)},
			"general": {hit("general.pdf", 0, 0.99)},
		},
	}
	uc := newRetrieveFixture(backend)

	results, err := uc.Retrieve(context.Background(), domain.RetrievalQuery{
		Query:       "best bistro",
		Destination: "paris",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	// Namespace specificity beats score: the weak paris hit stays first.
	if results[0].Namespace != "paris" || results[1].Namespace != "france" || results[2].Namespace != "general" {
		t.Fatalf("expected paris,france,general order, got %s,%s,%s",
			results[0].Namespace, results[1].Namespace, results[2].Namespace)
	}
}

func TestRetrieveEarlyTermination(t *testing.T) {
	backend := &backendFake{
		unfiltered: map[string][]domain.RetrievedChunk{
			"paris": {hit("a.pdf", 0, 0.9), hit("a.pdf", 1, 0.8)},
		},
	}
	uc := newRetrieveFixture(backend)

	results, err := uc.Retrieve(context.Background(), domain.RetrievalQuery{
		Query:       "metro tickets",
		Destination: "paris",
		TopK:        2,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(backend.queried) != 1 || backend.queried[0] != "paris" {
		t.Fatalf("expected only paris queried, got %v", backend.queried)
	}
}

func TestRetrieveDeduplicatesAcrossNamespaces(t *testing.T) {
	backend := &backendFake{
		unfiltered: map[string][]domain.RetrievedChunk{
			"paris":   {hit("shared.pdf", 3, 0.9)},
			"france":  {hit("shared.pdf", 3, 0.7)},
			"general": {hit("other.pdf", 0, 0.5)},
		},
	}
	uc := newRetrieveFixture(backend)

	results, err := uc.Retrieve(context.Background(), domain.RetrievalQuery{
		Query:       "louvre hours",
		Destination: "paris",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected duplicate collapsed to 2 results, got %d", len(results))
	}
	if results[0].SourceFile != "shared.pdf" || results[0].Namespace != "paris" {
		t.Fatalf("expected first sighting kept from paris, got %s in %s",
			results[0].SourceFile, results[0].Namespace)
	}
}

func TestRetrieveUnfilteredFallback(t *testing.T) {
	backend := &backendFake{
		filtered: map[string][]domain.RetrievedChunk{
			"paris": {hit("paris.pdf", 0, 0.8)},
		},
		unfiltered: map[string][]domain.RetrievedChunk{
			"paris":  {hit("paris.pdf", 1, 0.6)},
			"france": {hit("france.pdf", 0, 0.5)},
		},
	}
	uc := newRetrieveFixture(backend)

	results, err := uc.Retrieve(context.Background(), domain.RetrievalQuery{
		Query:       "where to eat",
		Destination: "paris",
		Section:     domain.SectionRestaurants,
		TopK:        3,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected filtered hit plus fallback hits, got %d results", len(results))
	}
	// Filtered pass exhausts the whole path before the unfiltered one starts.
	want := []string{"paris", "france", "general", "paris", "france"}
	if len(backend.queried) != len(want) {
		t.Fatalf("expected %d queries, got %v", len(want), backend.queried)
	}
	for i, ns := range want {
		if backend.queried[i] != ns {
			t.Fatalf("expected query %d against %s, got %s", i, ns, backend.queried[i])
		}
	}
}

func TestRetrieveNoFallbackWithoutSection(t *testing.T) {
	backend := &backendFake{}
	uc := newRetrieveFixture(backend)

	results, err := uc.Retrieve(context.Background(), domain.RetrievalQuery{
		Query:       "anything",
		Destination: "paris",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
	if len(backend.queried) != 3 {
		t.Fatalf("expected one pass over the path, got %v", backend.queried)
	}
}

func TestRetrieveUnknownDestinationUsesGeneral(t *testing.T) {
	backend := &backendFake{
		unfiltered: map[string][]domain.RetrievedChunk{
			"general": {hit("general.pdf", 0, 0.7)},
		},
	}
	uc := newRetrieveFixture(backend)

	results, err := uc.Retrieve(context.Background(), domain.RetrievalQuery{
		Query:       "travel insurance",
		Destination: "atlantis",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(results) != 1 || results[0].Namespace != "general" {
		t.Fatalf("expected single general hit, got %v", results)
	}
	if backend.queried[0] != "atlantis" {
		t.Fatalf("expected unknown destination queried first, got %v", backend.queried)
	}
}

func TestRetrieveDeadlineMapsToTimeout(t *testing.T) {
	backend := &backendFake{
		unfiltered: map[string][]domain.RetrievedChunk{},
	}
	uc := newRetrieveFixture(backend)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := uc.Retrieve(ctx, domain.RetrievalQuery{Query: "anything", Destination: "paris"})
	if !domain.IsKind(err, domain.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestRetrieveCancelReturnedRaw(t *testing.T) {
	backend := &backendFake{}
	uc := newRetrieveFixture(backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Retrieve(ctx, domain.RetrievalQuery{Query: "anything"})
	if !domain.IsKind(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if domain.IsKind(err, domain.ErrTimeout) {
		t.Fatalf("expected cancellation not wrapped as timeout, got %v", err)
	}
}
