package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
)

// CatalogRepository is the order core's narrow view of the product catalog:
// read a SKU, take stock, give stock back.
type CatalogRepository interface {
	GetSKU(ctx context.Context, id uuid.UUID) (*models.ProductSKU, error)
	// DecrementStock atomically subtracts quantity from the SKU's stock.
	// Returns ErrInsufficientStock when fewer units remain than requested,
	// so two concurrent buyers can never both drain the last unit.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	// RestoreStock adds quantity back to the SKU's stock.
	RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type gormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a CatalogRepository backed by GORM.
func NewGormCatalogRepository(db *gorm.DB) CatalogRepository {
	return &gormCatalogRepository{db: db}
}

func (r *gormCatalogRepository) GetSKU(ctx context.Context, id uuid.UUID) (*models.ProductSKU, error) {
	var sku models.ProductSKU
	if err := r.db.WithContext(ctx).First(&sku, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *gormCatalogRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProductSKU{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	// zero rows: either the SKU is gone or the stock check failed
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *gormCatalogRepository) RestoreStock(ctx context.Context, id uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProductSKU{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
