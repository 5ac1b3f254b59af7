package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
)

// ShippingZoneRepository defines data access for per-country shipping rates.
type ShippingZoneRepository interface {
	Create(ctx context.Context, zone *models.ShippingZone) error
	// FindByCountry matches the destination country case-insensitively.
	FindByCountry(ctx context.Context, country string) (*models.ShippingZone, error)
	FindAll(ctx context.Context) ([]models.ShippingZone, error)
	Delete(ctx context.Context, country string) error
}

type gormShippingZoneRepository struct {
	db *gorm.DB
}

// NewGormShippingZoneRepository creates a ShippingZoneRepository backed by GORM.
func NewGormShippingZoneRepository(db *gorm.DB) ShippingZoneRepository {
	return &gormShippingZoneRepository{db: db}
}

func (r *gormShippingZoneRepository) Create(ctx context.Context, zone *models.ShippingZone) error {
	return r.db.WithContext(ctx).Create(zone).Error
}

func (r *gormShippingZoneRepository) FindByCountry(ctx context.Context, country string) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	if err := r.db.WithContext(ctx).
		Where("LOWER(country_name) = LOWER(?)", country).
		First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *gormShippingZoneRepository) FindAll(ctx context.Context) ([]models.ShippingZone, error) {
	var zones []models.ShippingZone
	if err := r.db.WithContext(ctx).
		Order("country_name ASC").
		Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *gormShippingZoneRepository) Delete(ctx context.Context, country string) error {
	res := r.db.WithContext(ctx).
		Where("LOWER(country_name) = LOWER(?)", country).
		Delete(&models.ShippingZone{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
