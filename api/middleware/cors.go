package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// used when RIDERS_CORS_ALLOWED_ORIGINS is empty
var localOrigins = []string{"http://localhost:3000", "http://localhost:4200"}

func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = localOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", IdempotencyHeader, RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "X-RC-Token", "Retry-After", replayedHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
