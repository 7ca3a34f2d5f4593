package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRequestIDGeneratesAndEchoesID(t *testing.T) {
	var seen string
	h := withRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if seen == "" {
		t.Fatal("expected a generated request id in context")
	}
	if got := rec.Header().Get(requestIDHeader); got != seen {
		t.Fatalf("expected echoed id %q, got %q", seen, got)
	}
}

func TestWithRequestIDHonorsUpstreamID(t *testing.T) {
	var seen string
	h := withRequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "proxy-supplied")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "proxy-supplied" {
		t.Fatalf("expected upstream id preserved, got %q", seen)
	}
	if got := rec.Header().Get(requestIDHeader); got != "proxy-supplied" {
		t.Fatalf("expected upstream id echoed, got %q", got)
	}
}

func TestResponseTrackerRecordsStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	tracker := newResponseTracker(rec)

	tracker.WriteHeader(http.StatusServiceUnavailable)
	if _, err := tracker.Write([]byte("backend down")); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	if tracker.code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 recorded, got %d", tracker.code)
	}
	if tracker.bytesOut != int64(len("backend down")) {
		t.Fatalf("expected %d bytes recorded, got %d", len("backend down"), tracker.bytesOut)
	}
}

func TestResponseTrackerDefaultsToOK(t *testing.T) {
	tracker := newResponseTracker(httptest.NewRecorder())
	if _, err := tracker.Write([]byte("ok")); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if tracker.code != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", tracker.code)
	}
}
