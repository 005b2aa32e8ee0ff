package controllers

import (
	"net/http"

	"github.com/riderschoice/riderschoice-backend/internal/cart"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

func CartGet(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "cart", http.StatusOK, func(q request) (*cart.CartDTO, error) {
		return svc.Get(q.Context(), q.Actor)
	})
}

// CartAdd merges the requested quantity into the caller's cart.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "cart", http.StatusOK, func(q request) (*cart.CartDTO, error) {
		in, err := body[cart.AddItemInput](q)
		if err != nil {
			return nil, err
		}
		return svc.Add(q.Context(), q.Actor, in)
	})
}

func CartUpdate(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "cart", http.StatusOK, func(q request) (*cart.CartDTO, error) {
		itemID, err := q.ID("itemId")
		if err != nil {
			return nil, err
		}
		in, err := body[cart.UpdateItemInput](q)
		if err != nil {
			return nil, err
		}
		return svc.Update(q.Context(), q.Actor, itemID, in)
	})
}

func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "cart", http.StatusOK, func(q request) (*cart.CartDTO, error) {
		itemID, err := q.ID("itemId")
		if err != nil {
			return nil, err
		}
		return svc.Remove(q.Context(), q.Actor, itemID)
	})
}
