package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/riderschoice/riderschoice-backend/internal/users"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/security"
	"github.com/riderschoice/riderschoice-backend/pkg/types"
)

const (
	emailUniqueConstraint = "users_email_key"
	minPasswordLength     = 6
)

// Register opens a user-role account and signs it in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := users.NormalizeEmail(req.Email)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var address types.Address
	if req.Address != nil {
		address = *req.Address
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         enums.AccountRoleUser,
		Address:      address,
		Phone:        req.Phone,
	})
	if err != nil {
		if db.IsUniqueViolation(err, emailUniqueConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}

	return s.issueToken(ctx, user, s.now())
}
