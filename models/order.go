package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// Order is the GORM model persisted in Postgres. Monetary columns are
// decimal(10,2); the subtotal is derived from the order items, not stored.
type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`

	FullName   string `gorm:"type:varchar(100);not null" json:"full_name"`
	Email      string `gorm:"type:varchar(255);not null" json:"email"`
	Contact    string `gorm:"type:varchar(32)" json:"contact,omitempty"`
	Address    string `gorm:"type:varchar(255);not null" json:"address"`
	City       string `gorm:"type:varchar(100);not null" json:"city"`
	PostalCode string `gorm:"type:varchar(32);not null" json:"postal_code"`
	Country    string `gorm:"type:varchar(100);not null" json:"country"`

	Tax            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	ShippingCost   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"shipping_cost"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	Status   OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CouponID *uuid.UUID  `gorm:"type:uuid" json:"coupon_id,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
}

// Subtotal derives the pre-tax, pre-shipping sum from the item snapshots.
func (o *Order) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range o.OrderItems {
		subtotal = subtotal.Add(item.PriceAtPurchase.Mul(decimal.NewFromInt(int64(item.QuantityAtPurchase))))
	}
	return subtotal
}

// OrderItem snapshots price and quantity at purchase time; it is never
// mutated after creation and is deleted only by order cascade.
type OrderItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	SKUID              uuid.UUID       `gorm:"type:uuid;not null" json:"sku_id"`
	PriceAtPurchase    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_purchase"`
	QuantityAtPurchase int             `gorm:"not null" json:"quantity_at_purchase"`
}

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	FullName   string `json:"full_name" binding:"required,max=100"`
	Email      string `json:"email" binding:"required,email"`
	Contact    string `json:"contact"`
	Address    string `json:"address" binding:"required,max=255"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=32"`
	Country    string `json:"country"`
	CouponCode string             `json:"coupon_code"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// OrderItemRequest is one requested line of a new order.
type OrderItemRequest struct {
	SKUID    uuid.UUID `json:"sku_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// UpdateOrderStatusRequest is the payload for a status transition.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,oneof=pending processing shipped delivered canceled"`
}

// OrderCreatedEvent is published to Kafka after a successful order creation.
type OrderCreatedEvent struct {
	EventType   string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	TotalAmount string    `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent is published to Kafka after a status transition.
type OrderStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    string    `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorRole  string    `json:"actor_role"`
	Timestamp  time.Time `json:"timestamp"`
}
