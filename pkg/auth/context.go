package auth

import (
	"github.com/google/uuid"

	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
)

// AuthenticatedContext is the caller identity resolved from a bearer token.
// Services receive it as an explicit argument.
type AuthenticatedContext struct {
	AccountID uuid.UUID
	Role      enums.AccountRole
}

// NewAuthenticatedContext builds the caller identity from verified claims.
func NewAuthenticatedContext(claims *AccessTokenClaims) AuthenticatedContext {
	if claims == nil {
		return AuthenticatedContext{}
	}
	return AuthenticatedContext{AccountID: claims.AccountID, Role: claims.Role}
}

// IsZero reports whether no account has been resolved.
func (a AuthenticatedContext) IsZero() bool {
	return a.AccountID == uuid.Nil
}

// IsAdmin reports whether the caller holds the admin role.
func (a AuthenticatedContext) IsAdmin() bool {
	return a.Role == enums.AccountRoleAdmin
}

// Owns reports whether the caller is the given account.
func (a AuthenticatedContext) Owns(accountID uuid.UUID) bool {
	return !a.IsZero() && a.AccountID == accountID
}

// Require fails with UNAUTHORIZED when no account has been resolved.
func (a AuthenticatedContext) Require() error {
	if a.IsZero() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return nil
}

// RequireAdmin fails with UNAUTHORIZED or FORBIDDEN unless the caller is an admin.
func (a AuthenticatedContext) RequireAdmin() error {
	if err := a.Require(); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}
