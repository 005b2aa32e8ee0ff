package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/internal/users"
	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/security"
)

const tempPasswordLength = 16

// Account describes a user to ensure exists. An empty Password gets a generated one.
type Account struct {
	Name     string
	Email    string
	Password string
	Role     enums.AccountRole
}

// AccountResult reports what EnsureAccount did. GeneratedPassword is set only
// when a new account was created without an explicit password.
type AccountResult struct {
	Email             string
	Created           bool
	GeneratedPassword string
}

// Seeder loads fixtures idempotently: rows that already exist are left untouched.
type Seeder struct {
	db          *gorm.DB
	users       *users.Repository
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

func NewSeeder(conn *gorm.DB, passwordCfg config.PasswordConfig, logg *logger.Logger) (*Seeder, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	return &Seeder{
		db:          conn,
		users:       users.NewRepository(conn),
		passwordCfg: passwordCfg,
		logg:        logg,
	}, nil
}

// SeedCatalog inserts every fixture item not already present by (name, brand)
// and returns how many were created.
func (s *Seeder) SeedCatalog(ctx context.Context, file *CatalogFile) (int, error) {
	if file == nil {
		return 0, nil
	}
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fixture := range file.Items {
			item, err := fixture.toModel()
			if err != nil {
				return err
			}

			var existing int64
			if err := tx.Model(&models.CatalogItem{}).
				Where("name = ? AND brand = ?", item.Name, item.Brand).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				continue
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("create %s: %w", item.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "created", created), "seed.catalog.complete")
	}
	return created, nil
}

// EnsureAccount creates the account unless one with the same email exists.
func (s *Seeder) EnsureAccount(ctx context.Context, account Account) (*AccountResult, error) {
	email := users.NormalizeEmail(account.Email)
	if email == "" {
		return nil, fmt.Errorf("account email required")
	}
	result := &AccountResult{Email: email}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup %s: %w", email, err)
	}

	password := strings.TrimSpace(account.Password)
	if password == "" {
		password, err = security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, fmt.Errorf("generate password: %w", err)
		}
		result.GeneratedPassword = password
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := account.Role
	if role == "" {
		role = enums.AccountRoleUser
	}
	if _, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         account.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}); err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	result.Created = true

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"email": email, "role": string(role)}), "seed.account.created")
	}
	return result, nil
}
