package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetrics(t *testing.T) {
	registry := NewRegistry()

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Hello, World!"))
	})

	wrappedHandler := HTTPMetrics(registry)(testHandler)

	req := httptest.NewRequest("GET", "/check_new_file/demo/a.bin", nil)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if body := w.Body.String(); body != "Hello, World!" {
		t.Errorf("Expected 'Hello, World!', got %q", body)
	}

	got := testutil.ToFloat64(registry.httpRequestsTotal.WithLabelValues("GET", "/check_new_file/{room}/{name}", "200"))
	if got != 1 {
		t.Errorf("http_requests_total = %v, want 1", got)
	}
}

func TestHTTPMetricsWithNilRegistry(t *testing.T) {
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	wrappedHandler := HTTPMetrics(nil)(testHandler)

	req := httptest.NewRequest("GET", "/list", nil)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHTTPMetricsSkipPaths(t *testing.T) {
	registry := NewRegistry()

	called := false
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	wrappedHandler := HTTPMetrics(registry, "/metrics")(testHandler)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	wrappedHandler.ServeHTTP(w, req)

	if !called {
		t.Error("Handler should have been called for a skipped path")
	}

	if got := testutil.ToFloat64(registry.httpRequestsTotal.WithLabelValues("GET", "/metrics", "200")); got != 0 {
		t.Errorf("skipped path was recorded %v times", got)
	}
}

func TestHTTPMetricsStatus(t *testing.T) {
	registry := NewRegistry()

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/done_new_file/demo/a.bin", nil)
	w := httptest.NewRecorder()
	HTTPMetrics(registry)(testHandler).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	got := testutil.ToFloat64(registry.httpRequestsTotal.WithLabelValues("POST", "/done_new_file/{room}/{name}", "404"))
	if got != 1 {
		t.Errorf("http_requests_total = %v, want 1", got)
	}
}
