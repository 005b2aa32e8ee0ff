package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/types"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        enums.AccountRole `json:"role"`
	Address     *types.Address    `json:"address,omitempty"`
	Phone       *string           `json:"phone,omitempty"`
	LastLoginAt *time.Time        `json:"last_login_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new account.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.AccountRole
	Address      types.Address
	Phone        *string
}

func (d CreateUserDTO) ToModel() *models.User {
	role := d.Role
	if role == "" {
		role = enums.AccountRoleUser
	}
	return &models.User{
		Name:         strings.TrimSpace(d.Name),
		Email:        NormalizeEmail(d.Email),
		PasswordHash: d.PasswordHash,
		Role:         role,
		Address:      d.Address,
		Phone:        d.Phone,
		Cart:         models.Cart{},
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	dto := &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Phone:       u.Phone,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
	if !u.Address.IsZero() {
		addr := u.Address
		dto.Address = &addr
	}
	return dto
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
