package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type contextKey string

const requestIDKey contextKey = "request_id"

// withRequestID tags every request with an id, honoring one supplied by an
// upstream proxy, and echoes it back so voice-session logs can be joined
// with engine logs.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// withAccessLog emits one structured line per request after the handler
// finishes. Server faults log at error, client faults at warn.
func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tracker := newResponseTracker(w)

		next.ServeHTTP(tracker, r)

		level := slog.LevelInfo
		switch {
		case tracker.code >= 500:
			level = slog.LevelError
		case tracker.code >= 400:
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "http_access",
			"request_id", requestID(r.Context()),
			"method", r.Method,
			"route", r.URL.Path,
			"code", tracker.code,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"bytes_out", tracker.bytesOut,
			"client", r.RemoteAddr,
			"agent", r.UserAgent(),
		)
	})
}

// responseTracker remembers the status and body size written through it.
// It forwards Flush so streamed responses keep working; the engine never
// hijacks or pushes.
type responseTracker struct {
	http.ResponseWriter
	code     int
	bytesOut int64
}

func newResponseTracker(w http.ResponseWriter) *responseTracker {
	return &responseTracker{ResponseWriter: w, code: http.StatusOK}
}

func (t *responseTracker) WriteHeader(code int) {
	t.code = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTracker) Write(b []byte) (int, error) {
	n, err := t.ResponseWriter.Write(b)
	t.bytesOut += int64(n)
	return n, err
}

func (t *responseTracker) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
