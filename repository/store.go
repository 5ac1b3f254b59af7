package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrInsufficientStock is returned when a conditional stock decrement
	// finds fewer units than requested.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrCouponExhausted is returned when a guarded used_count increment
	// finds the usage limit already reached.
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)

// Store bundles the repositories and runs atomic units of work. Operations
// invoked through the Store handed to Atomic all share one transaction; a
// returned error rolls the whole unit back.
type Store interface {
	Orders() OrderRepository
	Payments() PaymentRepository
	Coupons() CouponRepository
	Catalog() CatalogRepository
	ShippingZones() ShippingZoneRepository

	Atomic(ctx context.Context, fn func(Store) error) error
}

// GormStore implements Store on a *gorm.DB handle.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by the given database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Orders() OrderRepository { return NewGormOrderRepository(s.db) }

func (s *GormStore) Payments() PaymentRepository { return NewGormPaymentRepository(s.db) }

func (s *GormStore) Coupons() CouponRepository { return NewGormCouponRepository(s.db) }

func (s *GormStore) Catalog() CatalogRepository { return NewGormCatalogRepository(s.db) }

func (s *GormStore) ShippingZones() ShippingZoneRepository {
	return NewGormShippingZoneRepository(s.db)
}

// Atomic runs fn inside a database transaction.
func (s *GormStore) Atomic(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
