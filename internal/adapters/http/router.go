package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paradise-voice/travel-knowledge/internal/core/domain"
	"github.com/paradise-voice/travel-knowledge/internal/core/ports"
	"github.com/paradise-voice/travel-knowledge/internal/observability/metrics"
)

// DefaultMaxUploadBytes mirrors the upload boundary contract: oversized
// documents are rejected here, before the engine ever sees them.
const DefaultMaxUploadBytes = 10 << 20

type Router struct {
	ingestor       ports.DocumentIngestor
	retriever      ports.TravelRetriever
	quota          ports.QuotaReporter
	httpMetrics    *metrics.HTTPServerMetrics
	engineMetrics  *metrics.EngineMetrics
	maxUploadBytes int64
	rateLimitRPS   float64
	rateLimitBurst int
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	retriever ports.TravelRetriever,
	quota ports.QuotaReporter,
	httpMetrics *metrics.HTTPServerMetrics,
	engineMetrics *metrics.EngineMetrics,
	maxUploadBytes int64,
	rateLimitRPS float64,
	rateLimitBurst int,
) *Router {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Router{
		ingestor:       ingestor,
		retriever:      retriever,
		quota:          quota,
		httpMetrics:    httpMetrics,
		engineMetrics:  engineMetrics,
		maxUploadBytes: maxUploadBytes,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/retrieve", rt.retrieve)
	mux.HandleFunc("/v1/quota", rt.quotaStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(
		prometheus.Gatherers{rt.httpMetrics.Gatherer(), rt.engineMetrics.Gatherer()},
		promhttp.HandlerOpts{},
	))

	handler := http.Handler(mux)
	handler = rateLimitMiddleware(rt.rateLimitRPS, rt.rateLimitBurst, handler)
	handler = rt.httpMetrics.Middleware("travel-knowledge-api", handler)
	handler = withAccessLog(handler)
	handler = withRequestID(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("document exceeds the upload size limit"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	report, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("document exceeds the upload size limit"))
			return
		}
		writeJSON(w, mapErrorToHTTPStatus(err), ingestErrorBody(err, report))
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (rt *Router) retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	var req struct {
		Query       string `json:"query"`
		Destination string `json:"destination"`
		Section     string `json:"section"`
		TopK        int    `json:"top_k"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query is required"))
		return
	}

	var section domain.Section
	if req.Section != "" {
		parsed, ok := domain.ParseSection(req.Section)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorBody("unknown section: "+req.Section))
			return
		}
		section = parsed
	}

	results, err := rt.retriever.Retrieve(r.Context(), domain.RetrievalQuery{
		Query:       req.Query,
		Destination: req.Destination,
		Section:     section,
		TopK:        req.TopK,
	})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}
	if results == nil {
		results = []domain.RetrievedChunk{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

func (rt *Router) quotaStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed"))
		return
	}

	status, err := rt.quota.Status(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// ingestErrorBody keeps the attempted/committed counts visible on failure so
// callers can see how far an at-least-once batch got.
func ingestErrorBody(err error, report *domain.IngestReport) map[string]any {
	body := map[string]any{"error": err.Error()}
	if report != nil {
		body["chunks_attempted"] = report.ChunksAttempted
		body["chunks_written"] = report.ChunksWritten
	}
	var quotaErr *domain.QuotaError
	if errors.As(err, &quotaErr) {
		body["quota"] = quotaErr.Status
	}
	return body
}
