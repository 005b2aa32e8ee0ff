package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	seen []observation
}

func (r *recordingObserver) Observe(method, route string, status int, _ time.Duration) {
	r.seen = append(r.seen, observation{method: method, route: route, status: status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	observer := &recordingObserver{}
	router := chi.NewRouter()
	router.Use(Metrics(observer))
	router.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/items/abc", "/health"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if len(observer.seen) != 2 {
		t.Fatalf("expected 2 observations got %d", len(observer.seen))
	}
	if got := observer.seen[0]; got.route != "/items/{id}" || got.status != http.StatusTeapot {
		t.Fatalf("unexpected observation %+v", got)
	}
	if got := observer.seen[1]; got.route != "/health" || got.status != http.StatusOK {
		t.Fatalf("unexpected observation %+v", got)
	}
}

func TestMetricsNilObserverIsPassthrough(t *testing.T) {
	called := false
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatalf("expected next handler to run")
	}
}
