package controllers

import (
	"net/http"

	"github.com/riderschoice/riderschoice-backend/internal/orders"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

// OrderCreate places an order for the caller and reserves stock for every line.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "order", http.StatusCreated, func(q request) (*orders.OrderDTO, error) {
		in, err := body[orders.CreateOrderInput](q)
		if err != nil {
			return nil, err
		}
		return svc.Create(q.Context(), q.Actor, in)
	})
}

func OrderListMine(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "order", http.StatusOK, func(q request) ([]orders.OrderDTO, error) {
		return svc.ListMine(q.Context(), q.Actor)
	})
}

func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "order", http.StatusOK, func(q request) (*orders.OrderDTO, error) {
		id, err := q.ID("id")
		if err != nil {
			return nil, err
		}
		return svc.Get(q.Context(), q.Actor, id)
	})
}

func OrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "order", http.StatusOK, func(q request) (*orders.OrderDTO, error) {
		id, err := q.ID("id")
		if err != nil {
			return nil, err
		}
		return svc.Cancel(q.Context(), q.Actor, id)
	})
}

// OrderUpdateStatus lets admins overwrite an order's status.
func OrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return endpoint(logg, svc != nil, "order", http.StatusOK, func(q request) (*orders.OrderDTO, error) {
		id, err := q.ID("id")
		if err != nil {
			return nil, err
		}
		in, err := body[orders.UpdateStatusInput](q)
		if err != nil {
			return nil, err
		}
		return svc.UpdateStatus(q.Context(), q.Actor, id, in)
	})
}
