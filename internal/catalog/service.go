package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/pkg/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/outbox"
	"github.com/riderschoice/riderschoice-backend/pkg/outbox/payloads"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type accountLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type reviewRecorder interface {
	IncReviewAdded()
}

// Service exposes catalog reads, admin maintenance and reviews.
type Service interface {
	List(ctx context.Context) ([]ItemDTO, error)
	ListFeatured(ctx context.Context) ([]ItemDTO, error)
	ListByCategory(ctx context.Context, category string) ([]ItemDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	Create(ctx context.Context, actor auth.AuthenticatedContext, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID) error
	AddReview(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID, input ReviewInput) (*ItemDTO, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo     Repository
	Accounts accountLoader
	Tx       db.TxRunner
	Outbox   outboxPublisher
	Metrics  reviewRecorder
}

type service struct {
	repo     Repository
	accounts accountLoader
	tx       db.TxRunner
	outbox   outboxPublisher
	metrics  reviewRecorder
	now      func() time.Time
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("account loader required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     params.Repo,
		accounts: params.Accounts,
		tx:       params.Tx,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context) ([]ItemDTO, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog items")
	}
	return toItemDTOs(items), nil
}

func (s *service) ListFeatured(ctx context.Context) ([]ItemDTO, error) {
	items, err := s.repo.ListFeatured(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured items")
	}
	return toItemDTOs(items), nil
}

func (s *service) ListByCategory(ctx context.Context, category string) ([]ItemDTO, error) {
	parsed, err := enums.ParseItemCategory(category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	items, err := s.repo.ListByCategory(ctx, parsed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items by category")
	}
	return toItemDTOs(items), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.load(ctx, s.repo, id, false)
	if err != nil {
		return nil, err
	}
	dto := ToItemDTO(*item)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, actor auth.AuthenticatedContext, input CreateItemInput) (*ItemDTO, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	item := &models.CatalogItem{
		Name:           strings.TrimSpace(input.Name),
		Brand:          strings.TrimSpace(input.Brand),
		Category:       input.Category,
		IsFeatured:     input.IsFeatured,
		Reviews:        models.Reviews{},
		ImageURL:       strings.TrimSpace(input.ImageURL),
		Description:    strings.TrimSpace(input.Description),
		Specifications: input.Specifications.toModel(),
	}
	var unset []string
	if input.Price != nil {
		item.Price = *input.Price
	} else {
		unset = append(unset, "price")
	}
	if input.Stock != nil {
		item.Stock = *input.Stock
	} else {
		unset = append(unset, "stock")
	}
	if err := validateItem(item, unset...); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog item")
	}
	dto := ToItemDTO(*item)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	// Row lock keeps the full-row save from dropping a concurrent review.
	var updated *models.CatalogItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.load(ctx, repo, id, true)
		if err != nil {
			return err
		}
		applyUpdate(item, input)
		if err := validateItem(item); err != nil {
			return err
		}
		if err := repo.Save(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update catalog item")
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := ToItemDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete catalog item")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
	}
	return nil
}

func (s *service) AddReview(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID, input ReviewInput) (*ItemDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(input.Comment)
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}

	reviewer, err := s.accounts.FindByID(ctx, actor.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviewer")
	}

	var updated *models.CatalogItem
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := s.load(ctx, repo, id, true)
		if err != nil {
			return err
		}

		item.Reviews = append(item.Reviews, models.Review{
			ReviewerID:   reviewer.ID,
			ReviewerName: reviewer.Name,
			Rating:       input.Rating,
			Comment:      comment,
			Date:         s.now(),
		})
		item.Rating = AverageRating(item.Reviews)

		if err := repo.Save(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save review")
		}

		updated = item
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewAdded,
			AggregateType: enums.AggregateCatalogItem,
			AggregateID:   item.ID,
			Actor:         &outbox.ActorRef{UserID: actor.AccountID, Role: actor.Role.String()},
			Data: payloads.ReviewAddedEvent{
				ItemID:      item.ID,
				ReviewerID:  reviewer.ID,
				Rating:      input.Rating,
				NewRating:   item.Rating,
				ReviewCount: len(item.Reviews),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncReviewAdded()
	}
	dto := ToItemDTO(*updated)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID, forUpdate bool) (*models.CatalogItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	var (
		item *models.CatalogItem
		err  error
	)
	if forUpdate {
		item, err = repo.FindByIDForUpdate(ctx, id)
	} else {
		item, err = repo.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
	}
	return item, nil
}

func applyUpdate(item *models.CatalogItem, input UpdateItemInput) {
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		item.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.Price != nil {
		item.Price = *input.Price
	}
	if input.Stock != nil {
		item.Stock = *input.Stock
	}
	if input.IsFeatured != nil {
		item.IsFeatured = *input.IsFeatured
	}
	if input.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.Specifications != nil {
		item.Specifications = input.Specifications.toModel()
	}
}

func validateItem(item *models.CatalogItem, missing ...string) error {
	if item.Name == "" {
		missing = append(missing, "name")
	}
	if item.Brand == "" {
		missing = append(missing, "brand")
	}
	if item.ImageURL == "" {
		missing = append(missing, "image_url")
	}
	if item.Description == "" {
		missing = append(missing, "description")
	}
	// Travel packages carry no engine specifications.
	if item.Category != enums.ItemCategoryPackage {
		specs := item.Specifications
		for _, field := range []struct {
			name  string
			value string
		}{
			{"specifications.engine", specs.Engine},
			{"specifications.power", specs.Power},
			{"specifications.torque", specs.Torque},
			{"specifications.transmission", specs.Transmission},
			{"specifications.weight", specs.Weight},
			{"specifications.fuel_capacity", specs.FuelCapacity},
		} {
			if strings.TrimSpace(field.value) == "" {
				missing = append(missing, field.name)
			}
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").WithDetails(map[string]any{"fields": missing})
	}
	if !item.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid category").WithDetails(map[string]any{"category": item.Category})
	}
	if item.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if item.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	return nil
}
