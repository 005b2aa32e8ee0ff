package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/types"
)

// CatalogItem is a purchasable bike or travel package. Reviews are embedded and
// share the item's lifetime.
type CatalogItem struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name           string             `gorm:"column:name;not null"`
	Brand          string             `gorm:"column:brand;not null"`
	Category       enums.ItemCategory `gorm:"column:category;type:text;not null;index:catalog_items_category_idx"`
	Price          decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	Stock          int                `gorm:"column:stock;not null;default:0"`
	IsFeatured     bool               `gorm:"column:is_featured;not null;default:false"`
	Rating         float64            `gorm:"column:rating;not null;default:0"`
	Reviews        Reviews            `gorm:"column:reviews;type:jsonb;not null"`
	ImageURL       string             `gorm:"column:image_url;not null"`
	Description    string             `gorm:"column:description;not null"`
	Specifications Specifications     `gorm:"column:specifications;type:jsonb;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (CatalogItem) TableName() string { return "catalog_items" }

func (c *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Reviews == nil {
		c.Reviews = Reviews{}
	}
	return nil
}

// Review is a single immutable customer review.
type Review struct {
	ReviewerID   uuid.UUID `json:"reviewerId"`
	ReviewerName string    `json:"reviewerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	Date         time.Time `json:"date"`
}

// Reviews persists the ordered review list as a JSON array.
type Reviews []Review

func (r Reviews) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return types.JSONValue([]Review(r))
}

func (r *Reviews) Scan(value interface{}) error {
	out := Reviews{}
	if err := types.ScanJSON(value, &out); err != nil {
		return err
	}
	*r = out
	return nil
}

// Specifications is the technical sheet of a bike or the itinerary summary of a package.
type Specifications struct {
	Engine       string `json:"engine"`
	Power        string `json:"power"`
	Torque       string `json:"torque"`
	Transmission string `json:"transmission"`
	Weight       string `json:"weight"`
	FuelCapacity string `json:"fuelCapacity"`
}

func (s Specifications) Value() (driver.Value, error) {
	return types.JSONValue(s)
}

func (s *Specifications) Scan(value interface{}) error {
	*s = Specifications{}
	return types.ScanJSON(value, s)
}
