package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type countingStore struct {
	mu   sync.Mutex
	hits map[string]int64
	err  error
}

func newCountingStore() *countingStore {
	return &countingStore{hits: map[string]int64{}}
}

func (c *countingStore) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.hits[key]++
	return c.hits[key], nil
}

func loginRequest(ip, email string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = ip
	return req
}

func TestThrottleKeepsBodyForHandler(t *testing.T) {
	policy := ThrottlePolicy{Name: "login", Window: time.Minute, PerIP: 5, PerEmail: 5}
	var got string
	handler := Throttle(policy, newCountingStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1:5000", "rider@example.com"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != `{"email":"rider@example.com","password":"secret"}` {
		t.Fatalf("handler saw %q", got)
	}
}

func TestThrottleBlocksPerEmailAcrossIPs(t *testing.T) {
	policy := ThrottlePolicy{Name: "login", Window: time.Minute, PerEmail: 2}
	handler := Throttle(policy, newCountingStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := []int{}
	for i, ip := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		email := "Rider@Example.com"
		if i == 1 {
			email = " rider@example.com"
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest(ip, email))
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestThrottleBlocksPerIP(t *testing.T) {
	policy := ThrottlePolicy{Name: "register", Window: 30 * time.Second, PerIP: 1}
	handler := Throttle(policy, newCountingStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, loginRequest("10.0.0.9:1234", "a@example.com"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, loginRequest("10.0.0.9:4321", "b@example.com"))

	if first.Code != http.StatusOK {
		t.Fatalf("expected first request through, got %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "30" {
		t.Fatalf("unexpected Retry-After %q", second.Header().Get("Retry-After"))
	}
	if !strings.Contains(second.Body.String(), `"RATE_LIMIT_EXCEEDED"`) {
		t.Fatalf("unexpected body %s", second.Body.String())
	}
}

func TestThrottleStoreFailureIsDependencyError(t *testing.T) {
	store := newCountingStore()
	store.err = errors.New("redis down")
	handler := Throttle(ThrottlePolicy{Name: "login", Window: time.Minute, PerIP: 3}, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1:1", "x@example.com"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestThrottleDisabledPolicyPassesThrough(t *testing.T) {
	store := newCountingStore()
	handler := Throttle(ThrottlePolicy{Name: "login"}, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.1:1", "x@example.com"))
	if len(store.hits) != 0 {
		t.Fatalf("disabled policy should not count, got %v", store.hits)
	}
}
