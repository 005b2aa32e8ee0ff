package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/riderschoice/riderschoice-backend/api/middleware"
	pkgAuth "github.com/riderschoice/riderschoice-backend/pkg/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
)

func withActor(req *http.Request, role enums.AccountRole) (*http.Request, pkgAuth.AuthenticatedContext) {
	actor := pkgAuth.AuthenticatedContext{AccountID: uuid.New(), Role: role}
	return req.WithContext(middleware.WithAuth(req.Context(), actor, "access-"+actor.AccountID.String())), actor
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode data envelope: %v (%s)", err, rec.Body.String())
	}
}
