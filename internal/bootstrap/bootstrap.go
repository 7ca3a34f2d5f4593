package bootstrap

import (
	"context"
	"fmt"

	"github.com/paradise-voice/travel-knowledge/internal/config"
	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/core/ports"
	"github.com/paradise-voice/travel-knowledge/internal/core/usecase"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/chunking"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/classify"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/embedding/ollama"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/embedding/openai"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/extractor"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/gazetteer"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/resilience"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/vector/memory"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/vector/pgvector"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/vector/pinecone"
	"github.com/paradise-voice/travel-knowledge/internal/infrastructure/vector/sqlitevec"
	"github.com/paradise-voice/travel-knowledge/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Tables config.Tables

	Classifier *classify.Classifier
	Ingestor   ports.DocumentIngestor
	Retriever  ports.TravelRetriever
	Quota      ports.QuotaReporter

	EngineMetrics *metrics.EngineMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	tables, err := config.LoadTables(cfg.TablesPath)
	if err != nil {
		return nil, fmt.Errorf("load knowledge tables: %w", err)
	}

	resolver := gazetteer.NewResolver(
		tables.Destinations.Cities,
		tables.Destinations.Countries,
		tables.Destinations.CityCountry,
	)
	classifier := classify.NewClassifier(resolver)
	splitter := chunking.NewSplitter(chunkWindows(tables), chunkWindow(tables.PolicyFor("default")))
	extractors := extractor.NewRegistry()

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	backend, closeFn, err := buildBackend(ctx, cfg, embedder.Dimension())
	if err != nil {
		return nil, err
	}

	engineMetrics := metrics.NewEngineMetrics("travel-knowledge")

	quota := usecase.NewQuotaMonitor(backend, cfg.StorageQuotaBytes, engineMetrics)
	ingestor := usecase.NewIngestUseCase(
		extractors, classifier, splitter, resolver, embedder, backend, quota, engineMetrics,
	)
	retriever := usecase.NewRetrieveUseCase(
		resolver, embedder, backend, cfg.RetrievalTopK, engineMetrics,
	)

	// Reads get retry + circuit breaking; ingestion stays unretried so its
	// at-least-once semantics remain visible to callers.
	guard := resilience.NewGuard(resilience.DefaultConfig(), resilience.ClassifyDomainError)
	resilientRetriever := resilience.NewRetriever(retriever, guard)

	return &App{
		Config:        cfg,
		Tables:        tables,
		Classifier:    classifier,
		Ingestor:      ingestor,
		Retriever:     resilientRetriever,
		Quota:         quota,
		EngineMetrics: engineMetrics,
		closeFn:       closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func buildEmbedder(cfg config.Config) (ports.Embedder, error) {
	switch cfg.EmbedProvider {
	case "openai":
		return openai.New(openai.Config{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.OpenAIEmbedModel,
			Dimension: cfg.EmbedDimension,
			RPS:       cfg.EmbedRPS,
			Burst:     cfg.EmbedBurst,
		}), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, cfg.EmbedDimension), nil
	default:
		return nil, fmt.Errorf("unknown embed provider: %q", cfg.EmbedProvider)
	}
}

func buildBackend(ctx context.Context, cfg config.Config, dimension int) (ports.VectorBackend, func(), error) {
	switch cfg.VectorBackend {
	case "pinecone":
		return pinecone.New(cfg.PineconeIndexHost, cfg.PineconeAPIKey, dimension), nil, nil
	case "pgvector":
		db, err := pgvector.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		store := pgvector.NewStore(db, dimension)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure pgvector schema: %w", err)
		}
		return store, func() { _ = db.Close() }, nil
	case "sqlite":
		store, err := sqlitevec.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("ensure sqlite schema: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	case "memory":
		return memory.NewStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector backend: %q", cfg.VectorBackend)
	}
}

func chunkWindows(tables config.Tables) map[domain.DocumentType]chunking.Window {
	types := []domain.DocumentType{
		domain.TypeTravelGuide,
		domain.TypeRestaurantGuide,
		domain.TypeHotelGuide,
		domain.TypeGeneral,
	}
	out := make(map[domain.DocumentType]chunking.Window, len(types))
	for _, t := range types {
		out[t] = chunkWindow(tables.PolicyFor(string(t)))
	}
	return out
}

func chunkWindow(policy config.ChunkPolicy) chunking.Window {
	return chunking.Window{Size: policy.Size, Overlap: policy.Overlap}
}
