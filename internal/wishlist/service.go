package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/internal/catalog"
	"github.com/riderschoice/riderschoice-backend/pkg/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
)

const wishlistItemUniqueConstraint = "wishlist_items_wishlist_item_key"

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	CatalogRepo  catalog.Repository
	Tx           db.TxRunner
}

// Service exposes business rules for wishlist management. Every call acts on
// the caller's own wishlist.
type Service interface {
	Get(ctx context.Context, actor auth.AuthenticatedContext) (*WishlistDTO, error)
	Count(ctx context.Context, actor auth.AuthenticatedContext) (int, error)
	Add(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID) (*WishlistDTO, error)
	Remove(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID) (*WishlistDTO, error)
	Delete(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID) (*WishlistDTO, error)
}

type service struct {
	wishlistRepo *Repository
	catalogRepo  catalog.Repository
	tx           db.TxRunner
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, fmt.Errorf("wishlist repo is required")
	}
	if params.CatalogRepo == nil {
		return nil, fmt.Errorf("catalog repo is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		catalogRepo:  params.CatalogRepo,
		tx:           params.Tx,
	}, nil
}

func (s *service) Get(ctx context.Context, actor auth.AuthenticatedContext) (*WishlistDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	wishlist, err := s.wishlistRepo.FindByUser(ctx, actor.AccountID)
	if err != nil {
		return nil, mapWishlistError(err)
	}
	return s.resolve(ctx, s.catalogRepo, wishlist)
}

func (s *service) Count(ctx context.Context, actor auth.AuthenticatedContext) (int, error) {
	if err := actor.Require(); err != nil {
		return 0, err
	}
	count, err := s.wishlistRepo.CountByUser(ctx, actor.AccountID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count wishlist items")
	}
	return int(count), nil
}

// Add resolves or creates the wishlist and appends the item. A repeated add
// is a conflict.
func (s *service) Add(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID) (*WishlistDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	var out *WishlistDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.wishlistRepo.WithTx(tx)
		items := s.catalogRepo.WithTx(tx)

		if _, err := items.FindByID(ctx, itemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "catalog item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
		}

		wishlist, err := repo.FindByUserForUpdate(ctx, actor.AccountID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			wishlist, err = repo.Create(ctx, actor.AccountID)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
		}

		if containsItem(wishlist, itemID) {
			return pkgerrors.New(pkgerrors.CodeConflict, "item already in wishlist")
		}
		entry, err := repo.AddItem(ctx, wishlist.ID, itemID)
		if err != nil {
			if db.IsUniqueViolation(err, wishlistItemUniqueConstraint) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "item already in wishlist")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
		}
		wishlist.Items = append(wishlist.Items, *entry)

		out, err = s.resolve(ctx, items, wishlist)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove drops an item the caller expects to be saved; a missing entry is a
// bad request.
func (s *service) Remove(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID) (*WishlistDTO, error) {
	return s.removeItem(ctx, actor, itemID, pkgerrors.New(pkgerrors.CodeValidation, "item not in wishlist"))
}

// Delete drops an item by identity; a missing entry is not found.
func (s *service) Delete(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID) (*WishlistDTO, error) {
	return s.removeItem(ctx, actor, itemID, pkgerrors.New(pkgerrors.CodeNotFound, "item not found in wishlist"))
}

func (s *service) removeItem(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID, missing error) (*WishlistDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}

	var out *WishlistDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.wishlistRepo.WithTx(tx)

		wishlist, err := repo.FindByUserForUpdate(ctx, actor.AccountID)
		if err != nil {
			return mapWishlistError(err)
		}
		if !containsItem(wishlist, itemID) {
			return missing
		}
		if _, err := repo.RemoveItem(ctx, wishlist.ID, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
		}

		kept := make([]models.WishlistItem, 0, len(wishlist.Items))
		for _, entry := range wishlist.Items {
			if entry.ItemID != itemID {
				kept = append(kept, entry)
			}
		}
		wishlist.Items = kept

		out, err = s.resolve(ctx, s.catalogRepo.WithTx(tx), wishlist)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) resolve(ctx context.Context, items catalog.Repository, wishlist *models.Wishlist) (*WishlistDTO, error) {
	ids := make([]uuid.UUID, 0, len(wishlist.Items))
	for _, entry := range wishlist.Items {
		ids = append(ids, entry.ItemID)
	}
	found, err := items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve wishlist items")
	}
	byID := make(map[uuid.UUID]models.CatalogItem, len(found))
	for _, item := range found {
		byID[item.ID] = item
	}

	dto := &WishlistDTO{
		ID:     wishlist.ID,
		UserID: wishlist.UserID,
		Items:  make([]catalog.ItemDTO, 0, len(found)),
		Count:  len(wishlist.Items),
	}
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			dto.Items = append(dto.Items, catalog.ToItemDTO(item))
		}
	}
	return dto, nil
}

func containsItem(wishlist *models.Wishlist, itemID uuid.UUID) bool {
	for _, entry := range wishlist.Items {
		if entry.ItemID == itemID {
			return true
		}
	}
	return false
}

func mapWishlistError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wishlist not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist")
}
