package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/riderschoice/riderschoice-backend/api/responses"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	maxIdempotencyKey = 200

	// ReplayShort covers user-level writes such as reviews and wishlist adds.
	ReplayShort = 24 * time.Hour
	// ReplayLong covers order writes, where a duplicate moves stock.
	ReplayLong = 7 * 24 * time.Hour
)

// ReplayStore persists finished responses. *redis.Client satisfies it.
type ReplayStore interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}

type replay struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

// Idempotent replays the stored response when a client repeats a write with
// the same Idempotency-Key and body. The header is optional; requests
// without it are not recorded. 5xx responses are never stored so the client
// can retry them.
func Idempotent(store ReplayStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || ttl <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(clientKey) > maxIdempotencyKey {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := replayKey(r, clientKey)
			fingerprint := digest(string(body))

			raw, found, err := store.Lookup(ctx, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency store unavailable"))
				return
			}
			if found {
				var prev replay
				if err := json.Unmarshal([]byte(raw), &prev); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt idempotency record"))
					return
				}
				if prev.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key was already used with a different request body"))
					return
				}
				if prev.ContentType != "" {
					w.Header().Set("Content-Type", prev.ContentType)
				}
				w.Header().Set(replayedHeader, "true")
				w.WriteHeader(prev.Status)
				_, _ = w.Write(prev.Body)
				return
			}

			tee := &teeWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(tee, r)
			if tee.status >= http.StatusInternalServerError {
				return
			}

			record, _ := json.Marshal(replay{
				Status:      tee.status,
				ContentType: tee.Header().Get("Content-Type"),
				Body:        tee.buf.Bytes(),
				Fingerprint: fingerprint,
			})
			if _, err := store.PutIfAbsent(ctx, key, string(record), ttl); err != nil && logg != nil {
				logg.Error(ctx, "store idempotent response", err)
			}
		})
	}
}

// replayKey scopes the client key to the caller and the concrete path, so
// two users (or two orders) can reuse the same header value.
func replayKey(r *http.Request, clientKey string) string {
	caller := UserIDFromContext(r.Context())
	if caller == "" {
		caller = "anonymous"
	}
	return redis.Key("idem", caller, digest(r.Method+" "+r.URL.Path+" "+clientKey))
}

type teeWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (t *teeWriter) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *teeWriter) Write(b []byte) (int, error) {
	t.buf.Write(b)
	return t.ResponseWriter.Write(b)
}
