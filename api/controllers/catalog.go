package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/riderschoice/riderschoice-backend/api/validators"
	"github.com/riderschoice/riderschoice-backend/internal/catalog"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

const maxCategoryParam = 32

func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "catalog", http.StatusOK, func(q request) ([]catalog.ItemDTO, error) {
		return svc.List(q.Context())
	})
}

func CatalogFeatured(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "catalog", http.StatusOK, func(q request) ([]catalog.ItemDTO, error) {
		return svc.ListFeatured(q.Context())
	})
}

func CatalogByCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "catalog", http.StatusOK, func(q request) ([]catalog.ItemDTO, error) {
		return svc.ListByCategory(q.Context(), validators.PathText(q.Request, "category", maxCategoryParam))
	})
}

func CatalogGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "catalog", http.StatusOK, func(q request) (*catalog.ItemDTO, error) {
		id, err := q.ID("id")
		if err != nil {
			return nil, err
		}
		return svc.Get(q.Context(), id)
	})
}

// CatalogCreate handles item creation for admins.
func CatalogCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "catalog", http.StatusCreated, func(q request) (*catalog.ItemDTO, error) {
		payload, err := body[createItemRequest](q)
		if err != nil {
			return nil, err
		}
		return svc.Create(q.Context(), q.Actor, payload.toInput())
	})
}

func CatalogUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "catalog", http.StatusOK, func(q request) (*catalog.ItemDTO, error) {
		id, err := q.ID("id")
		if err != nil {
			return nil, err
		}
		payload, err := body[updateItemRequest](q)
		if err != nil {
			return nil, err
		}
		return svc.Update(q.Context(), q.Actor, id, payload.toInput())
	})
}

func CatalogDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "catalog", http.StatusOK, func(q request) (message, error) {
		id, err := q.ID("id")
		if err != nil {
			return message{}, err
		}
		if err := svc.Delete(q.Context(), q.Actor, id); err != nil {
			return message{}, err
		}
		return message{Message: "item deleted"}, nil
	})
}

func CatalogAddReview(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "catalog", http.StatusCreated, func(q request) (*catalog.ItemDTO, error) {
		id, err := q.ID("id")
		if err != nil {
			return nil, err
		}
		payload, err := body[reviewRequest](q)
		if err != nil {
			return nil, err
		}
		return svc.AddReview(q.Context(), q.Actor, id, catalog.ReviewInput{Rating: payload.Rating, Comment: payload.Comment})
	})
}

type createItemRequest struct {
	Name           string                    `json:"name"`
	Brand          string                    `json:"brand"`
	Category       string                    `json:"category"`
	Price          *decimal.Decimal          `json:"price"`
	Stock          *int                      `json:"stock"`
	IsFeatured     bool                      `json:"is_featured"`
	ImageURL       string                    `json:"image_url"`
	Description    string                    `json:"description"`
	Specifications catalog.SpecificationsDTO `json:"specifications"`
}

func (r createItemRequest) toInput() catalog.CreateItemInput {
	return catalog.CreateItemInput{
		Name:           r.Name,
		Brand:          r.Brand,
		Category:       normalizeCategory(r.Category),
		Price:          r.Price,
		Stock:          r.Stock,
		IsFeatured:     r.IsFeatured,
		ImageURL:       r.ImageURL,
		Description:    r.Description,
		Specifications: r.Specifications,
	}
}

type updateItemRequest struct {
	Name           *string                    `json:"name,omitempty"`
	Brand          *string                    `json:"brand,omitempty"`
	Category       *string                    `json:"category,omitempty"`
	Price          *decimal.Decimal           `json:"price,omitempty"`
	Stock          *int                       `json:"stock,omitempty"`
	IsFeatured     *bool                      `json:"is_featured,omitempty"`
	ImageURL       *string                    `json:"image_url,omitempty"`
	Description    *string                    `json:"description,omitempty"`
	Specifications *catalog.SpecificationsDTO `json:"specifications,omitempty"`
}

func (r updateItemRequest) toInput() catalog.UpdateItemInput {
	input := catalog.UpdateItemInput{
		Name:           r.Name,
		Brand:          r.Brand,
		Price:          r.Price,
		Stock:          r.Stock,
		IsFeatured:     r.IsFeatured,
		ImageURL:       r.ImageURL,
		Description:    r.Description,
		Specifications: r.Specifications,
	}
	if r.Category != nil {
		category := normalizeCategory(*r.Category)
		input.Category = &category
	}
	return input
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required"`
	Comment string `json:"comment" validate:"required"`
}

// Unknown values pass through so the service reports them as an invalid category.
func normalizeCategory(raw string) enums.ItemCategory {
	if parsed, err := enums.ParseItemCategory(raw); err == nil {
		return parsed
	}
	return enums.ItemCategory(strings.TrimSpace(raw))
}
