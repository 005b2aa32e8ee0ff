package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/riderschoice/riderschoice-backend/api/middleware"
	"github.com/riderschoice/riderschoice-backend/api/responses"
	"github.com/riderschoice/riderschoice-backend/api/validators"
	pkgAuth "github.com/riderschoice/riderschoice-backend/pkg/auth"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

// request is what an endpoint body sees: the inbound request, the caller
// resolved by middleware.Auth, and the response headers.
type request struct {
	*http.Request
	Actor pkgAuth.AuthenticatedContext
	w     http.ResponseWriter
}

func (q request) ID(param string) (uuid.UUID, error) {
	return validators.ParseUUIDParam(q.Request, param)
}

func (q request) SetHeader(key, value string) {
	q.w.Header().Set(key, value)
}

// endpoint renders fn's result as {"data": ...} with status, or its error as
// the error envelope. An unwired service answers INTERNAL_ERROR.
func endpoint[T any](logg *logger.Logger, wired bool, service string, status int, fn func(request) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !wired {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, service+" service unavailable"))
			return
		}
		out, err := fn(request{Request: r, Actor: middleware.AuthFromContext(r.Context()), w: w})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}
}

// body decodes and validates the JSON request body into a T.
func body[T any](q request) (T, error) {
	var v T
	err := validators.DecodeJSONBody(q.Request, &v)
	return v, err
}

type message struct {
	Message string `json:"message"`
}
