package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/pkg/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/security"
	"github.com/riderschoice/riderschoice-backend/pkg/types"
)

const (
	emailUniqueConstraint = "users_email_key"
	minPasswordLength     = 6
)

var profileFields = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"address":  {},
	"phone":    {},
}

// Service exposes profile reads and updates for the caller's own account.
type Service interface {
	Profile(ctx context.Context, actor auth.AuthenticatedContext) (*UserDTO, error)
	UpdateProfile(ctx context.Context, actor auth.AuthenticatedContext, fields map[string]json.RawMessage) (*UserDTO, error)
}

type service struct {
	repo        *Repository
	passwordCfg config.PasswordConfig
}

// NewService builds the profile service.
func NewService(repo *Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Profile(ctx context.Context, actor auth.AuthenticatedContext) (*UserDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, actor.AccountID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return FromModel(user), nil
}

// UpdateProfile applies an allow-listed patch. Any key outside the allow-list
// rejects the whole request before anything is written.
func (s *service) UpdateProfile(ctx context.Context, actor auth.AuthenticatedContext, fields map[string]json.RawMessage) (*UserDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	disallowed := []string{}
	for key := range fields {
		if _, ok := profileFields[key]; !ok {
			disallowed = append(disallowed, key)
		}
	}
	if len(disallowed) > 0 {
		sort.Strings(disallowed)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid updates").WithDetails(map[string]any{"fields": disallowed})
	}

	updates, err := s.buildUpdates(fields)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, actor.AccountID, updates); err != nil {
		if db.IsUniqueViolation(err, emailUniqueConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, mapLoadError(err)
	}

	user, err := s.repo.FindByID(ctx, actor.AccountID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return FromModel(user), nil
}

func (s *service) buildUpdates(fields map[string]json.RawMessage) (map[string]any, error) {
	updates := map[string]any{}

	if raw, ok := fields["name"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil || strings.TrimSpace(name) == "" {
			return nil, fieldError("name", "must be a non-empty string")
		}
		updates["name"] = strings.TrimSpace(name)
	}

	if raw, ok := fields["email"]; ok {
		var email string
		if err := json.Unmarshal(raw, &email); err != nil {
			return nil, fieldError("email", "must be a string")
		}
		email = NormalizeEmail(email)
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fieldError("email", "must be a valid email")
		}
		updates["email"] = email
	}

	if raw, ok := fields["password"]; ok {
		var password string
		if err := json.Unmarshal(raw, &password); err != nil || len(password) < minPasswordLength {
			return nil, fieldError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
		}
		hash, err := security.HashPassword(password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		updates["password_hash"] = hash
	}

	if raw, ok := fields["address"]; ok {
		var address types.Address
		if err := json.Unmarshal(raw, &address); err != nil {
			return nil, fieldError("address", "must be an address object")
		}
		updates["address"] = address
	}

	if raw, ok := fields["phone"]; ok {
		var phone *string
		if err := json.Unmarshal(raw, &phone); err != nil {
			return nil, fieldError("phone", "must be a string or null")
		}
		if phone != nil {
			trimmed := strings.TrimSpace(*phone)
			phone = &trimmed
		}
		updates["phone"] = phone
	}

	return updates, nil
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{field: message})
}

func mapLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
}
