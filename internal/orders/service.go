package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/internal/catalog"
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

type orderRecorder interface {
	IncOrderCreated()
	IncOrderCanceled()
	IncOrderStatus(status string)
}

// Service defines the order lifecycle.
type Service interface {
	Create(ctx context.Context, actor auth.AuthenticatedContext, input CreateOrderInput) (*OrderDTO, error)
	ListMine(ctx context.Context, actor auth.AuthenticatedContext) ([]OrderDTO, error)
	Get(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo    Repository
	Catalog catalog.Repository
	Tx      db.TxRunner
	Outbox  outboxPublisher
	Metrics orderRecorder
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	tx      db.TxRunner
	outbox  outboxPublisher
	metrics orderRecorder
	now     func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    params.Repo,
		catalog: params.Catalog,
		tx:      params.Tx,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create reserves stock line by line and records the order. Every decrement
// shares one transaction, so a failing line leaves no stock changed.
func (s *service) Create(ctx context.Context, actor auth.AuthenticatedContext, input CreateOrderInput) (*OrderDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		items := s.catalog.WithTx(tx)
		repo := s.repo.WithTx(tx)

		total := decimal.Zero
		lines := make([]models.OrderItem, 0, len(input.Items))
		eventLines := make([]payloads.OrderLine, 0, len(input.Items))
		for _, line := range input.Items {
			item, err := items.FindByIDForUpdate(ctx, line.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("catalog item %s not found", line.ItemID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
			}
			if item.Stock < line.Quantity {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("insufficient stock for %s", item.Name)).
					WithDetails(map[string]any{"item_id": item.ID, "available": item.Stock, "requested": line.Quantity})
			}

			lineTotal := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)

			if err := items.UpdateStock(ctx, item.ID, item.Stock-line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}

			lines = append(lines, models.OrderItem{
				ItemID:    item.ID,
				Name:      item.Name,
				UnitPrice: item.Price,
				Quantity:  line.Quantity,
				LineTotal: lineTotal,
			})
			eventLines = append(eventLines, payloads.OrderLine{ItemID: item.ID, Quantity: line.Quantity})
		}

		order := &models.Order{
			UserID:          actor.AccountID,
			TotalAmount:     total,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
			Contact:         input.Contact.toModel(),
			Status:          enums.OrderStatusPending,
			Items:           lines,
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		created = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				UserID:        order.UserID,
				TotalAmount:   order.TotalAmount,
				PaymentMethod: order.PaymentMethod,
				Lines:         eventLines,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncOrderCreated()
	}
	dto := ToOrderDTO(*created)
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, actor auth.AuthenticatedContext) ([]OrderDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	orders, err := s.repo.ListByUser(ctx, actor.AccountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toOrderDTOs(orders), nil
}

func (s *service) Get(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID) (*OrderDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}
	order, err := s.load(ctx, s.repo, id, false)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(order.UserID) && !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
	dto := ToOrderDTO(*order)
	return &dto, nil
}

// Cancel returns every line's quantity to stock. Lines whose catalog item has
// since been deleted are skipped.
func (s *service) Cancel(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID) (*OrderDTO, error) {
	if err := actor.Require(); err != nil {
		return nil, err
	}

	var canceled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items := s.catalog.WithTx(tx)

		order, err := s.load(ctx, repo, id, true)
		if err != nil {
			return err
		}
		if !actor.Owns(order.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
		}
		if !order.Status.Cancelable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot cancel order in current status").
				WithDetails(map[string]any{"status": order.Status})
		}

		restocked := make([]payloads.OrderLine, 0, len(order.Items))
		for _, line := range order.Items {
			item, err := items.FindByIDForUpdate(ctx, line.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog item")
			}
			if err := items.UpdateStock(ctx, item.ID, item.Stock+line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
			restocked = append(restocked, payloads.OrderLine{ItemID: item.ID, Quantity: line.Quantity})
		}

		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		order.Status = enums.OrderStatusCancelled
		canceled = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.OrderCanceledEvent{
				OrderID:    order.ID,
				UserID:     order.UserID,
				Restocked:  restocked,
				CanceledAt: s.now(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncOrderCanceled()
	}
	dto := ToOrderDTO(*canceled)
	return &dto, nil
}

// UpdateStatus overwrites the status with any known value. Transitions are
// not checked; shipping details are required only for shipped.
func (s *service) UpdateStatus(ctx context.Context, actor auth.AuthenticatedContext, id uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	status, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}

	updates := map[string]any{"status": status}
	var tracking *string
	if status == enums.OrderStatusShipped {
		if input.TrackingNumber != nil {
			trimmed := strings.TrimSpace(*input.TrackingNumber)
			tracking = &trimmed
		}
		missing := []string{}
		if tracking == nil || *tracking == "" {
			missing = append(missing, "tracking_number")
		}
		if input.EstimatedDelivery == nil || input.EstimatedDelivery.IsZero() {
			missing = append(missing, "estimated_delivery")
		}
		if len(missing) > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping details required").
				WithDetails(map[string]any{"fields": missing})
		}
		delivery := input.EstimatedDelivery.UTC()
		updates["tracking_number"] = *tracking
		updates["estimated_delivery"] = delivery
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.load(ctx, repo, id, true)
		if err != nil {
			return err
		}
		previous := order.Status

		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = status
		if status == enums.OrderStatusShipped {
			delivery := input.EstimatedDelivery.UTC()
			order.TrackingNumber = tracking
			order.EstimatedDelivery = &delivery
		}
		updated = order

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(actor),
			Data: payloads.OrderStatusChangedEvent{
				OrderID:           order.ID,
				UserID:            order.UserID,
				PreviousStatus:    previous,
				Status:            status,
				TrackingNumber:    order.TrackingNumber,
				EstimatedDelivery: order.EstimatedDelivery,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncOrderStatus(status.String())
	}
	dto := ToOrderDTO(*updated)
	return &dto, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID, forUpdate bool) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var (
		order *models.Order
		err   error
	)
	if forUpdate {
		order, err = repo.FindByIDForUpdate(ctx, id)
	} else {
		order, err = repo.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func validateCreate(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for i, line := range input.Items {
		if line.ItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].item_id is required", i))
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("items[%d].quantity must be greater than zero", i))
		}
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]any{"payment_method": input.PaymentMethod})
	}
	// Travel bookings may carry a contact instead of a postal address.
	if input.ShippingAddress.IsZero() && input.Contact == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping_address or contact is required")
	}
	return nil
}

func actorRef(actor auth.AuthenticatedContext) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.AccountID, Role: actor.Role.String()}
}
