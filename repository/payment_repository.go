package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
)

// PaymentRepository defines data access for payment records.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByTransactionUUID(ctx context.Context, transactionUUID string) (*models.Payment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Payment, int64, error)
	HasCompletedForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	// SettleIfPending moves a payment out of pending exactly once, writing
	// the gateway reference and raw response alongside the new status.
	// Returns false when the payment already left pending, so duplicate
	// gateway confirmations cannot re-apply side effects.
	SettleIfPending(ctx context.Context, id uuid.UUID, status models.PaymentStatus, gatewayTransactionID, rawJSON *string, settledAt time.Time) (bool, error)
}

type gormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a PaymentRepository backed by GORM.
func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepository{db: db}
}

func (r *gormPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRepository) FindByTransactionUUID(ctx context.Context, transactionUUID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("transaction_uuid = ?", transactionUUID).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *gormPaymentRepository) HasCompletedForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusCompleted).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormPaymentRepository) SettleIfPending(ctx context.Context, id uuid.UUID, status models.PaymentStatus, gatewayTransactionID, rawJSON *string, settledAt time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status": status,
	}
	if gatewayTransactionID != nil {
		updates["gateway_transaction_id"] = gatewayTransactionID
	}
	if rawJSON != nil {
		updates["raw_json"] = rawJSON
	}
	switch status {
	case models.PaymentStatusCompleted:
		updates["succeeded_at"] = settledAt
	case models.PaymentStatusFailed:
		updates["failed_at"] = settledAt
	}

	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
