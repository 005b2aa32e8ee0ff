package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wishlist is the per-account saved-for-later list, separate from the cart.
type Wishlist struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;uniqueIndex:wishlists_user_id_key"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (w *Wishlist) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// WishlistItem links a wishlist to a catalog item.
type WishlistItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	WishlistID uuid.UUID `gorm:"column:wishlist_id;type:uuid;not null;uniqueIndex:wishlist_items_wishlist_item_key"`
	ItemID     uuid.UUID `gorm:"column:item_id;type:uuid;not null;uniqueIndex:wishlist_items_wishlist_item_key"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
