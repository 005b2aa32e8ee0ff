package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/types"
)

// User is the shop account. The cart lives inline on the row.
type User struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name         string            `gorm:"column:name;not null"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex:users_email_key"`
	PasswordHash string            `gorm:"column:password_hash;not null"`
	Role         enums.AccountRole `gorm:"column:role;type:text;not null;default:'user'"`
	Address      types.Address     `gorm:"column:address;type:jsonb"`
	Phone        *string           `gorm:"column:phone"`
	Cart         Cart              `gorm:"column:cart;type:jsonb;not null"`
	LastLoginAt  *time.Time        `gorm:"column:last_login_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = enums.AccountRoleUser
	}
	if u.Cart == nil {
		u.Cart = Cart{}
	}
	return nil
}

// CartEntry is one line of the inline cart, keyed by catalog item.
type CartEntry struct {
	ItemID   uuid.UUID `json:"itemId"`
	Quantity int       `json:"quantity"`
}

// Cart persists the ordered cart lines as a JSON array.
type Cart []CartEntry

func (c Cart) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return types.JSONValue([]CartEntry(c))
}

func (c *Cart) Scan(value interface{}) error {
	out := Cart{}
	if err := types.ScanJSON(value, &out); err != nil {
		return err
	}
	*c = out
	return nil
}
