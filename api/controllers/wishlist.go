package controllers

import (
	"net/http"

	"github.com/riderschoice/riderschoice-backend/internal/wishlist"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

func WishlistGet(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "wishlist", http.StatusOK, func(q request) (*wishlist.WishlistDTO, error) {
		return svc.Get(q.Context(), q.Actor)
	})
}

func WishlistCount(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "wishlist", http.StatusOK, func(q request) (wishlist.CountDTO, error) {
		n, err := svc.Count(q.Context(), q.Actor)
		return wishlist.CountDTO{Count: n}, err
	})
}

// WishlistAdd saves the item named in the JSON body.
func WishlistAdd(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "wishlist", http.StatusCreated, func(q request) (*wishlist.WishlistDTO, error) {
		in, err := body[wishlist.AddItemInput](q)
		if err != nil {
			return nil, err
		}
		return svc.Add(q.Context(), q.Actor, in.ItemID)
	})
}

// WishlistAddByPath serves the account-scoped POST /users/wishlist/{itemId} route.
func WishlistAddByPath(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "wishlist", http.StatusCreated, func(q request) (*wishlist.WishlistDTO, error) {
		itemID, err := q.ID("itemId")
		if err != nil {
			return nil, err
		}
		return svc.Add(q.Context(), q.Actor, itemID)
	})
}

// WishlistRemove answers 400 when the item is not saved.
func WishlistRemove(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "wishlist", http.StatusOK, func(q request) (*wishlist.WishlistDTO, error) {
		itemID, err := q.ID("itemId")
		if err != nil {
			return nil, err
		}
		return svc.Remove(q.Context(), q.Actor, itemID)
	})
}

// WishlistDelete answers 404 when the item is not saved.
func WishlistDelete(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "wishlist", http.StatusOK, func(q request) (*wishlist.WishlistDTO, error) {
		itemID, err := q.ID("itemId")
		if err != nil {
			return nil, err
		}
		return svc.Delete(q.Context(), q.Actor, itemID)
	})
}
