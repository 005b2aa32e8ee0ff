package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/internal/catalog"
	"github.com/riderschoice/riderschoice-backend/internal/users"
	"github.com/riderschoice/riderschoice-backend/pkg/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
)

// Service manages the cart stored inline on the caller's account.
type Service interface {
	Get(ctx context.Context, actor auth.AuthenticatedContext) (*CartDTO, error)
	Add(ctx context.Context, actor auth.AuthenticatedContext, input AddItemInput) (*CartDTO, error)
	Update(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID, input UpdateItemInput) (*CartDTO, error)
	Remove(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID) (*CartDTO, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Accounts *users.Repository
	Catalog  catalog.Repository
	Tx       db.TxRunner
}

type service struct {
	accounts *users.Repository
	catalog  catalog.Repository
	tx       db.TxRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		accounts: params.Accounts,
		catalog:  params.Catalog,
		tx:       params.Tx,
	}, nil
}

func (s *service) Get(ctx context.Context, actor auth.AuthenticatedContext) (*CartDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	user, err := s.accounts.FindByID(ctx, actor.AccountID)
	if err != nil {
		return nil, mapAccountError(err)
	}
	return s.resolve(ctx, s.catalog, user.Cart)
}

func (s *service) Add(ctx context.Context, actor auth.AuthenticatedContext, input AddItemInput) (*CartDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item_id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	return s.mutate(ctx, actor, func(ctx context.Context, items catalog.Repository, cart models.Cart) (models.Cart, error) {
		if _, err := items.FindByID(ctx, input.ItemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
		}
		for i := range cart {
			if cart[i].ItemID == input.ItemID {
				cart[i].Quantity += input.Quantity
				return cart, nil
			}
		}
		return append(cart, models.CartEntry{ItemID: input.ItemID, Quantity: input.Quantity}), nil
	})
}

func (s *service) Update(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID, input UpdateItemInput) (*CartDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	return s.mutate(ctx, actor, func(_ context.Context, _ catalog.Repository, cart models.Cart) (models.Cart, error) {
		for i := range cart {
			if cart[i].ItemID == itemID {
				cart[i].Quantity = input.Quantity
				return cart, nil
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
	})
}

func (s *service) Remove(ctx context.Context, actor auth.AuthenticatedContext, itemID uuid.UUID) (*CartDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, actor, func(_ context.Context, _ catalog.Repository, cart models.Cart) (models.Cart, error) {
		kept := make(models.Cart, 0, len(cart))
		for _, entry := range cart {
			if entry.ItemID != itemID {
				kept = append(kept, entry)
			}
		}
		return kept, nil
	})
}

type cartMutation func(ctx context.Context, items catalog.Repository, cart models.Cart) (models.Cart, error)

// mutate runs a locked read-modify-write of the account's cart column.
func (s *service) mutate(ctx context.Context, actor auth.AuthenticatedContext, fn cartMutation) (*CartDTO, error) {
	var out *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		accounts := s.accounts.WithTx(tx)
		items := s.catalog.WithTx(tx)

		user, err := accounts.FindByIDForUpdate(ctx, actor.AccountID)
		if err != nil {
			return mapAccountError(err)
		}

		next, err := fn(ctx, items, user.Cart)
		if err != nil {
			return err
		}
		if err := accounts.UpdateCart(ctx, user.ID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
		}

		out, err = s.resolve(ctx, items, next)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) resolve(ctx context.Context, items catalog.Repository, cart models.Cart) (*CartDTO, error) {
	ids := make([]uuid.UUID, 0, len(cart))
	for _, entry := range cart {
		ids = append(ids, entry.ItemID)
	}
	found, err := items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart items")
	}
	return buildCartDTO(cart, found), nil
}

func mapAccountError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
}
