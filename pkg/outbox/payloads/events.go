package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riderschoice/riderschoice-backend/pkg/enums"
)

// OrderLine is the per-item summary carried by order events.
type OrderLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// OrderCreatedEvent signals a placed order after stock was reserved.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	UserID        uuid.UUID           `json:"user_id"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	Lines         []OrderLine         `json:"lines"`
}

// OrderCanceledEvent is emitted when an owner cancels a pending order.
type OrderCanceledEvent struct {
	OrderID    uuid.UUID   `json:"order_id"`
	UserID     uuid.UUID   `json:"user_id"`
	Restocked  []OrderLine `json:"restocked"`
	CanceledAt time.Time   `json:"canceled_at"`
}

// OrderStatusChangedEvent is emitted on every admin status overwrite.
type OrderStatusChangedEvent struct {
	OrderID           uuid.UUID         `json:"order_id"`
	UserID            uuid.UUID         `json:"user_id"`
	PreviousStatus    enums.OrderStatus `json:"previous_status"`
	Status            enums.OrderStatus `json:"status"`
	TrackingNumber    *string           `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery,omitempty"`
}

// ReviewAddedEvent is emitted after a review updates a catalog item's rating.
type ReviewAddedEvent struct {
	ItemID      uuid.UUID `json:"item_id"`
	ReviewerID  uuid.UUID `json:"reviewer_id"`
	Rating      int       `json:"rating"`
	NewRating   float64   `json:"new_rating"`
	ReviewCount int       `json:"review_count"`
}
