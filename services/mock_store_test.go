package services_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/repository"
)

// --- In-memory Store ---

// memStore backs the service tests with mutex-guarded maps. Atomic
// snapshots all state and restores it when the callback errors, mirroring
// a rolled-back database transaction.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	skus     map[uuid.UUID]*models.ProductSKU
	coupons  map[uuid.UUID]*models.Coupon
	orders   map[uuid.UUID]*models.Order
	payments map[uuid.UUID]*models.Payment
	zones    map[string]*models.ShippingZone
}

func newMemStore() *memStore {
	return &memStore{
		skus:     make(map[uuid.UUID]*models.ProductSKU),
		coupons:  make(map[uuid.UUID]*models.Coupon),
		orders:   make(map[uuid.UUID]*models.Order),
		payments: make(map[uuid.UUID]*models.Payment),
		zones:    make(map[string]*models.ShippingZone),
	}
}

func (m *memStore) Orders() repository.OrderRepository { return &memOrderRepo{s: m} }

func (m *memStore) Payments() repository.PaymentRepository { return &memPaymentRepo{s: m} }

func (m *memStore) Coupons() repository.CouponRepository { return &memCouponRepo{s: m} }

func (m *memStore) Catalog() repository.CatalogRepository { return &memCatalogRepo{s: m} }

func (m *memStore) ShippingZones() repository.ShippingZoneRepository { return &memZoneRepo{s: m} }

func (m *memStore) Atomic(_ context.Context, fn func(repository.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapSKUs := make(map[uuid.UUID]*models.ProductSKU, len(m.skus))
	for k, v := range m.skus {
		c := *v
		snapSKUs[k] = &c
	}
	snapCoupons := make(map[uuid.UUID]*models.Coupon, len(m.coupons))
	for k, v := range m.coupons {
		c := *v
		snapCoupons[k] = &c
	}
	snapOrders := make(map[uuid.UUID]*models.Order, len(m.orders))
	for k, v := range m.orders {
		c := *v
		c.OrderItems = append([]models.OrderItem(nil), v.OrderItems...)
		snapOrders[k] = &c
	}
	snapPayments := make(map[uuid.UUID]*models.Payment, len(m.payments))
	for k, v := range m.payments {
		c := *v
		snapPayments[k] = &c
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.skus = snapSKUs
		m.coupons = snapCoupons
		m.orders = snapOrders
		m.payments = snapPayments
		m.mu.Unlock()
		return err
	}
	return nil
}

// --- Catalog ---

type memCatalogRepo struct{ s *memStore }

func (r *memCatalogRepo) GetSKU(_ context.Context, id uuid.UUID) (*models.ProductSKU, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sku, ok := r.s.skus[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *sku
	return &c, nil
}

func (r *memCatalogRepo) DecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sku, ok := r.s.skus[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if sku.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	sku.Stock -= quantity
	return nil
}

func (r *memCatalogRepo) RestoreStock(_ context.Context, id uuid.UUID, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sku, ok := r.s.skus[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sku.Stock += quantity
	return nil
}

// --- Coupons ---

type memCouponRepo struct{ s *memStore }

func (r *memCouponRepo) Create(_ context.Context, c *models.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	for _, existing := range r.s.coupons {
		if existing.Code == c.Code {
			return &duplicateKeyError{}
		}
	}
	stored := *c
	r.s.coupons[c.ID] = &stored
	return nil
}

func (r *memCouponRepo) FindByCode(_ context.Context, code string) (*models.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCouponRepo) IncrementUsedCount(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coupons[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if c.UsedCount >= c.UsageLimit {
		return repository.ErrCouponExhausted
	}
	c.UsedCount++
	return nil
}

func (r *memCouponRepo) Deactivate(_ context.Context, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.coupons {
		if c.Code == code {
			c.Active = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memCouponRepo) FindAll(_ context.Context, _, _ int) ([]models.Coupon, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Coupon
	for _, c := range r.s.coupons {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

type duplicateKeyError struct{}

func (e *duplicateKeyError) Error() string { return "duplicate key value violates unique constraint" }

// --- Orders ---

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.OrderItems {
		if o.OrderItems[i].ID == uuid.Nil {
			o.OrderItems[i].ID = uuid.New()
		}
		o.OrderItems[i].OrderID = o.ID
	}
	stored := *o
	stored.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	r.s.orders[o.ID] = &stored
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *o
	c.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	return &c, nil
}

func (r *memOrderRepo) FindByIDAndCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *memOrderRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, _, _ int) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Order
	for _, o := range r.s.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) FindAll(_ context.Context, _, _ int) ([]models.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Order
	for _, o := range r.s.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

// --- Payments ---

type memPaymentRepo struct{ s *memStore }

func (r *memPaymentRepo) Create(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	r.s.payments[p.ID] = &stored
	return nil
}

func (r *memPaymentRepo) FindByTransactionUUID(_ context.Context, transactionUUID string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.TransactionUUID == transactionUUID {
			c := *p
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memPaymentRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]models.Payment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Payment
	for _, p := range r.s.payments {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memPaymentRepo) HasCompletedForOrder(_ context.Context, orderID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.OrderID == orderID && p.Status == models.PaymentStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPaymentRepo) SettleIfPending(_ context.Context, id uuid.UUID, status models.PaymentStatus, gatewayTransactionID, rawJSON *string, settledAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok || p.Status != models.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	p.GatewayTransactionID = gatewayTransactionID
	p.RawJSON = rawJSON
	switch status {
	case models.PaymentStatusCompleted:
		p.SucceededAt = &settledAt
	case models.PaymentStatusFailed:
		p.FailedAt = &settledAt
	}
	return true, nil
}

// --- Shipping zones ---

type memZoneRepo struct{ s *memStore }

func (r *memZoneRepo) Create(_ context.Context, z *models.ShippingZone) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if z.ID == uuid.Nil {
		z.ID = uuid.New()
	}
	stored := *z
	r.s.zones[strings.ToLower(z.CountryName)] = &stored
	return nil
}

func (r *memZoneRepo) FindByCountry(_ context.Context, country string) (*models.ShippingZone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	z, ok := r.s.zones[strings.ToLower(country)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *z
	return &c, nil
}

func (r *memZoneRepo) FindAll(_ context.Context) ([]models.ShippingZone, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ShippingZone
	for _, z := range r.s.zones {
		out = append(out, *z)
	}
	return out, nil
}

func (r *memZoneRepo) Delete(_ context.Context, country string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToLower(country)
	if _, ok := r.s.zones[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.zones, key)
	return nil
}

// --- Mock event publisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events [][]byte
}

func (m *mockPublisher) Publish(_ context.Context, _ string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, payload)
	return nil
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
