package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
)

// AddItemInput adds quantity units of an item, merging with an existing line.
type AddItemInput struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemInput overwrites the quantity of an existing line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// LineDTO is a cart entry resolved against the catalog. Name and prices are
// empty when the referenced item no longer exists.
type LineDTO struct {
	ItemID    uuid.UUID        `json:"item_id"`
	Quantity  int              `json:"quantity"`
	Name      string           `json:"name,omitempty"`
	ImageURL  string           `json:"image_url,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal *decimal.Decimal `json:"line_total,omitempty"`
	Available bool             `json:"available"`
}

// CartDTO is the caller's cart with a running total of the resolvable lines.
type CartDTO struct {
	Items       []LineDTO       `json:"items"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func buildCartDTO(entries models.Cart, items []models.CatalogItem) *CartDTO {
	byID := make(map[uuid.UUID]models.CatalogItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	out := &CartDTO{Items: make([]LineDTO, 0, len(entries)), TotalAmount: decimal.Zero}
	for _, entry := range entries {
		line := LineDTO{ItemID: entry.ItemID, Quantity: entry.Quantity}
		if item, ok := byID[entry.ItemID]; ok {
			unit := item.Price
			total := unit.Mul(decimal.NewFromInt(int64(entry.Quantity)))
			line.Name = item.Name
			line.ImageURL = item.ImageURL
			line.UnitPrice = &unit
			line.LineTotal = &total
			line.Available = true
			out.TotalAmount = out.TotalAmount.Add(total)
		}
		out.ItemCount += entry.Quantity
		out.Items = append(out.Items, line)
	}
	return out
}
