package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductSKU is a purchasable variant with its own price and stock.
// The order core only reads price/stock and adjusts stock through the
// catalog repository; SKU CRUD belongs to the catalog service.
type ProductSKU struct {
	ID       uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKUCode  string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku_code"`
	SellerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock    int             `gorm:"not null;default:0" json:"stock"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
