package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/types"
)

// Order is a placed purchase or booking. Items reference catalog rows weakly.
type Order struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index:orders_user_created_idx,priority:1"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ShippingAddress   types.Address       `gorm:"column:shipping_address;type:jsonb;not null"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	Contact           *OrderContact       `gorm:"column:contact;type:jsonb"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	TrackingNumber    *string             `gorm:"column:tracking_number"`
	EstimatedDelivery *time.Time          `gorm:"column:estimated_delivery"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime;index:orders_user_created_idx,priority:2"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = enums.OrderStatusPending
	}
	return nil
}

// OrderItem snapshots the catalog item name and unit price at purchase time.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index:order_items_order_id_idx"`
	ItemID    uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OrderContact carries the booking contact captured for travel packages.
type OrderContact struct {
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PickupLocation string `json:"pickupLocation,omitempty"`
}

func (c OrderContact) Value() (driver.Value, error) {
	return types.JSONValue(c)
}

func (c *OrderContact) Scan(value interface{}) error {
	*c = OrderContact{}
	return types.ScanJSON(value, c)
}
