package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingZone maps a destination country to a flat shipping rate.
// Countries without a zone fall back to the configured global rate.
type ShippingZone struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CountryName string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"country_name"`
	Rate        decimal.Decimal `gorm:"type:decimal(7,2);not null" json:"rate"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// CreateShippingZoneRequest is the payload for adding a zone (admin only).
type CreateShippingZoneRequest struct {
	CountryName string          `json:"country_name" binding:"required,max=100"`
	Rate        decimal.Decimal `json:"rate" binding:"required"`
}
