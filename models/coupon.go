package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType represents the kind of discount a coupon provides.
type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "fixed"
	DiscountTypePercentage DiscountType = "percentage"
)

// Coupon represents a promotional discount code stored in Postgres.
// Validity is the half-open window [ValidFrom, ValidTo).
type Coupon struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code              string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	DiscountType      DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	MinPurchaseAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"min_purchase_amount"`
	ValidFrom         time.Time       `gorm:"not null" json:"valid_from"`
	ValidTo           time.Time       `gorm:"not null" json:"valid_to"`
	UsageLimit        int             `gorm:"not null" json:"usage_limit"`
	UsedCount         int             `gorm:"not null;default:0" json:"used_count"`
	Active            bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// CreateCouponRequest is the payload for creating a new coupon (admin only).
type CreateCouponRequest struct {
	Code              string          `json:"code" binding:"required,min=3,max=64"`
	DiscountType      DiscountType    `json:"discount_type" binding:"required,oneof=fixed percentage"`
	DiscountValue     decimal.Decimal `json:"discount_value" binding:"required"`
	MinPurchaseAmount decimal.Decimal `json:"min_purchase_amount"`
	ValidFrom         time.Time       `json:"valid_from" binding:"required"`
	ValidTo           time.Time       `json:"valid_to" binding:"required"`
	UsageLimit        int             `json:"usage_limit" binding:"required,gt=0"`
}

// ValidateCouponRequest is the payload for checking a coupon against a cart subtotal.
type ValidateCouponRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal" binding:"required"`
}

// ValidateCouponResponse reports the validation outcome and, when valid,
// the discount the coupon would yield against the given subtotal.
type ValidateCouponResponse struct {
	Valid          bool            `json:"valid"`
	Code           string          `json:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Reason         string          `json:"reason,omitempty"`
}
