package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
)

type lineRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

type orderRequest struct {
	Email string        `json:"email" validate:"required,email"`
	Lines []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

func decode(t *testing.T, body string) (orderRequest, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	var dest orderRequest
	err := DecodeJSONBody(req, &dest)
	return dest, err
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := typed.Details().(map[string]string)
	return details
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	got, err := decode(t, `{"email":"rider@example.com","lines":[{"quantity":2}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != "rider@example.com" || got.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected decode %+v", got)
	}
}

func TestDecodeJSONBodyReportsFieldPaths(t *testing.T) {
	_, err := decode(t, `{"email":"nope","lines":[{"quantity":0}]}`)
	details := detailsOf(t, err)
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if _, ok := details["lines[0].quantity"]; !ok {
		t.Fatalf("expected nested path in %v", details)
	}
}

func TestDecodeJSONBodyEmptyList(t *testing.T) {
	_, err := decode(t, `{"email":"rider@example.com","lines":[]}`)
	if got := detailsOf(t, err)["lines"]; got != "must contain at least 1 entries" {
		t.Fatalf("unexpected lines detail %q", got)
	}
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"unknown":  `{"email":"rider@example.com","lines":[{"quantity":1}],"coupon":"FREE"}`,
		"trailing": `{"email":"rider@example.com","lines":[{"quantity":1}]} {}`,
		"syntax":   `{"email":`,
	}
	for name, body := range cases {
		if _, err := decode(t, body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func withParam(key, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestParseUUIDParam(t *testing.T) {
	if _, err := ParseUUIDParam(withParam("id", "2f1e0a1c-7c1b-4a7e-9a55-2f0a3d1f7b10"), "id"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseUUIDParam(withParam("id", "bike-1"), "id"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseUUIDParam(withParam("id", " "), "id"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank id, got %v", err)
	}
}

func TestPathTextTrimsAndCaps(t *testing.T) {
	if got := PathText(withParam("category", "  Adventure "), "category", 32); got != "Adventure" {
		t.Fatalf("unexpected value %q", got)
	}
	if got := PathText(withParam("category", "Touring"), "category", 4); got != "Tour" {
		t.Fatalf("expected capped value, got %q", got)
	}
}
