package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/types"
)

// LineInput is one requested {item, quantity} pair.
type LineInput struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,gt=0"`
}

// ContactInput carries the optional booking contact for travel packages.
type ContactInput struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	PickupLocation string `json:"pickup_location,omitempty"`
}

// CreateOrderInput is the checkout payload.
type CreateOrderInput struct {
	Items           []LineInput         `json:"items" validate:"required,min=1,dive"`
	ShippingAddress types.Address       `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
	Contact         *ContactInput       `json:"contact,omitempty"`
}

// UpdateStatusInput is the admin status overwrite.
type UpdateStatusInput struct {
	Status            string     `json:"status" validate:"required"`
	TrackingNumber    *string    `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

type OrderItemDTO struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type ContactDTO struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PickupLocation string `json:"pickup_location,omitempty"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"user_id"`
	Items             []OrderItemDTO      `json:"items"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	ShippingAddress   types.Address       `json:"shipping_address"`
	PaymentMethod     enums.PaymentMethod `json:"payment_method"`
	Contact           *ContactDTO         `json:"contact,omitempty"`
	Status            enums.OrderStatus   `json:"status"`
	TrackingNumber    *string             `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// ToOrderDTO maps an order row and its lines to the response payload.
func ToOrderDTO(order models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ItemID:    item.ItemID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	dto := OrderDTO{
		ID:                order.ID,
		UserID:            order.UserID,
		Items:             items,
		TotalAmount:       order.TotalAmount,
		ShippingAddress:   order.ShippingAddress,
		PaymentMethod:     order.PaymentMethod,
		Status:            order.Status,
		TrackingNumber:    order.TrackingNumber,
		EstimatedDelivery: order.EstimatedDelivery,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
	if order.Contact != nil {
		dto.Contact = &ContactDTO{
			FullName:       order.Contact.FullName,
			Email:          order.Contact.Email,
			Phone:          order.Contact.Phone,
			PickupLocation: order.Contact.PickupLocation,
		}
	}
	return dto
}

func toOrderDTOs(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, ToOrderDTO(order))
	}
	return out
}

func (c *ContactInput) toModel() *models.OrderContact {
	if c == nil {
		return nil
	}
	return &models.OrderContact{
		FullName:       c.FullName,
		Email:          c.Email,
		Phone:          c.Phone,
		PickupLocation: c.PickupLocation,
	}
}
