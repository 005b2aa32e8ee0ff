package wishlist

import (
	"github.com/google/uuid"

	"github.com/riderschoice/riderschoice-backend/internal/catalog"
)

// WishlistDTO is the caller's wishlist with referenced catalog items resolved.
// Count covers every entry, including ones whose item was deleted since.
type WishlistDTO struct {
	ID     uuid.UUID         `json:"id"`
	UserID uuid.UUID         `json:"user_id"`
	Items  []catalog.ItemDTO `json:"items"`
	Count  int               `json:"count"`
}

// CountDTO carries only the number of saved items.
type CountDTO struct {
	Count int `json:"count"`
}

// AddItemInput is the body of POST /wishlist/add.
type AddItemInput struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
}
