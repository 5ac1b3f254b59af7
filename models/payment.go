package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	PaymentMethodEsewa PaymentMethod = "esewa"
	PaymentMethodCOD   PaymentMethod = "cod"
)

// PaymentStatus is the settlement state of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment represents one payment attempt against an order. Amount is a
// snapshot of the order total at the moment the attempt started.
type Payment struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Method PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	GatewayTransactionID *string `gorm:"type:varchar(100);uniqueIndex" json:"gateway_transaction_id,omitempty"`
	TransactionUUID      string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"transaction_uuid"`
	RawJSON              *string `gorm:"type:jsonb" json:"-"`

	SucceededAt *time.Time `json:"succeeded_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// InitiatePaymentRequest is the payload for starting a payment attempt.
type InitiatePaymentRequest struct {
	OrderID uuid.UUID     `json:"order_id" binding:"required"`
	Method  PaymentMethod `json:"method" binding:"required,oneof=esewa cod"`
}

// VerifyPaymentRequest is the payload for reconciling a gateway transaction.
type VerifyPaymentRequest struct {
	TransactionUUID string `json:"transaction_uuid" binding:"required"`
}

// PaymentSettledEvent is published to Kafka when a payment leaves pending.
type PaymentSettledEvent struct {
	EventType string    `json:"event_type"`
	PaymentID string    `json:"payment_id"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
