package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
)

// ItemDTO is the catalog item payload returned to clients.
type ItemDTO struct {
	ID             uuid.UUID          `json:"id"`
	Name           string             `json:"name"`
	Brand          string             `json:"brand"`
	Category       enums.ItemCategory `json:"category"`
	Price          decimal.Decimal    `json:"price"`
	Stock          int                `json:"stock"`
	IsFeatured     bool               `json:"is_featured"`
	Rating         float64            `json:"rating"`
	Reviews        []ReviewDTO        `json:"reviews"`
	ImageURL       string             `json:"image_url"`
	Description    string             `json:"description"`
	Specifications SpecificationsDTO  `json:"specifications"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type ReviewDTO struct {
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	Date         time.Time `json:"date"`
}

type SpecificationsDTO struct {
	Engine       string `json:"engine"`
	Power        string `json:"power"`
	Torque       string `json:"torque"`
	Transmission string `json:"transmission"`
	Weight       string `json:"weight"`
	FuelCapacity string `json:"fuel_capacity"`
}

// CreateItemInput carries a new catalog item.
type CreateItemInput struct {
	Name           string
	Brand          string
	Category       enums.ItemCategory
	Price          *decimal.Decimal
	Stock          *int
	IsFeatured     bool
	ImageURL       string
	Description    string
	Specifications SpecificationsDTO
}

// UpdateItemInput is a partial patch; nil fields are left untouched.
type UpdateItemInput struct {
	Name           *string
	Brand          *string
	Category       *enums.ItemCategory
	Price          *decimal.Decimal
	Stock          *int
	IsFeatured     *bool
	ImageURL       *string
	Description    *string
	Specifications *SpecificationsDTO
}

// ReviewInput carries a review submitted by an authenticated account.
type ReviewInput struct {
	Rating  int
	Comment string
}

// ToItemDTO maps a catalog row to its response payload.
func ToItemDTO(item models.CatalogItem) ItemDTO {
	reviews := make([]ReviewDTO, 0, len(item.Reviews))
	for _, review := range item.Reviews {
		reviews = append(reviews, ReviewDTO{
			ReviewerID:   review.ReviewerID,
			ReviewerName: review.ReviewerName,
			Rating:       review.Rating,
			Comment:      review.Comment,
			Date:         review.Date,
		})
	}
	return ItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Brand:       item.Brand,
		Category:    item.Category,
		Price:       item.Price,
		Stock:       item.Stock,
		IsFeatured:  item.IsFeatured,
		Rating:      item.Rating,
		Reviews:     reviews,
		ImageURL:    item.ImageURL,
		Description: item.Description,
		Specifications: SpecificationsDTO{
			Engine:       item.Specifications.Engine,
			Power:        item.Specifications.Power,
			Torque:       item.Specifications.Torque,
			Transmission: item.Specifications.Transmission,
			Weight:       item.Specifications.Weight,
			FuelCapacity: item.Specifications.FuelCapacity,
		},
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func toItemDTOs(items []models.CatalogItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ToItemDTO(item))
	}
	return out
}

func (s SpecificationsDTO) toModel() models.Specifications {
	return models.Specifications{
		Engine:       s.Engine,
		Power:        s.Power,
		Torque:       s.Torque,
		Transmission: s.Transmission,
		Weight:       s.Weight,
		FuelCapacity: s.FuelCapacity,
	}
}
