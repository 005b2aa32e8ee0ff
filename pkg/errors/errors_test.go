package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code    Code
		status  int
		expose  bool
		details bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, expose: true, details: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, expose: true},
		{code: CodeForbidden, status: http.StatusForbidden, expose: true},
		{code: CodeNotFound, status: http.StatusNotFound, expose: true},
		{code: CodeConflict, status: http.StatusConflict, expose: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, expose: true, details: true},
		{code: CodeIdempotency, status: http.StatusConflict, expose: true, details: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, expose: true},
		{code: CodeInternal, status: http.StatusInternalServerError},
		{code: CodeDependency, status: http.StatusServiceUnavailable, details: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.ExposeMessage != tt.expose {
			t.Fatalf("code %s expected expose %v got %v", tt.code, tt.expose, meta.ExposeMessage)
		}
		if meta.DetailsAllowed != tt.details {
			t.Fatalf("code %s expected details %v got %v", tt.code, tt.details, meta.DetailsAllowed)
		}
		if meta.PublicMessage == "" {
			t.Fatalf("code %s has no public message", tt.code)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestPublicMessageHidesInternalText(t *testing.T) {
	notFound := New(CodeNotFound, "catalog item not found")
	if got := notFound.PublicMessage(); got != "catalog item not found" {
		t.Fatalf("expected caller message, got %q", got)
	}

	internal := Wrap(CodeDependency, stdErrors.New("dial tcp 10.0.0.4:5432"), "load catalog item")
	if got := internal.PublicMessage(); got != "dependency unavailable" {
		t.Fatalf("expected generic message, got %q", got)
	}

	empty := New(CodeValidation, "")
	if got := empty.PublicMessage(); got != "validation failed" {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "create user")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if wrapped.Error() != "CONFLICT: create user: boom" {
		t.Fatalf("unexpected error text %q", wrapped.Error())
	}

	detail := map[string]any{"field": "email"}
	if wrapped.WithDetails(detail).Details() == nil {
		t.Fatalf("details should be preserved")
	}
}

func TestNilErrorIsSafe(t *testing.T) {
	var e *Error
	if e.Code() != CodeInternal || e.Message() != "" || e.Details() != nil || e.Unwrap() != nil {
		t.Fatalf("nil error accessors should return zero values")
	}
	if e.WithDetails("x") != nil {
		t.Fatalf("WithDetails on nil should stay nil")
	}
}

func TestIsCodeMatchesWrappedChain(t *testing.T) {
	err := fmt.Errorf("create order: %w", New(CodeValidation, "insufficient stock for Ducati"))
	if !IsCode(err, CodeValidation) {
		t.Fatalf("expected validation code in chain")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatalf("unexpected not found match")
	}
	if IsCode(nil, CodeInternal) || As(nil) != nil {
		t.Fatalf("nil error should not match")
	}
}

func TestDescribeCollectsChainAndPostgresFault(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users"}
	err := Wrap(CodeConflict, fmt.Errorf("insert: %w", pgErr), "create user")

	trace := Describe(err)
	if trace.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", trace.Code)
	}
	if len(trace.Chain) != 3 {
		t.Fatalf("expected three chain entries, got %v", trace.Chain)
	}
	if trace.PG == nil || trace.PG.Constraint != "users_email_key" {
		t.Fatalf("expected postgres fault, got %+v", trace.PG)
	}

	fields := trace.Fields()
	if fields["pg_code"] != "23505" || fields["error_code"] != string(CodeConflict) {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestDescribePlainError(t *testing.T) {
	trace := Describe(stdErrors.New("boom"))
	if trace.Code != "" || trace.PG != nil {
		t.Fatalf("plain error should carry no code or fault: %+v", trace)
	}
	if _, ok := trace.Fields()["pg_code"]; ok {
		t.Fatalf("plain error should not log pg fields")
	}
	if Describe(nil).Message != "" {
		t.Fatalf("nil error should describe as empty")
	}
}
