package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/repository"
)

// Coupon rejection reasons, reported fail-fast in check order.
const (
	CouponReasonNotFound      = "coupon not found"
	CouponReasonInactive      = "coupon is not active"
	CouponReasonOutsideWindow = "coupon is outside its validity window"
	CouponReasonExhausted     = "coupon usage limit reached"
	CouponReasonBelowMinimum  = "subtotal below the coupon minimum purchase amount"
)

// CouponRejection runs the ledger checks in order and returns the first
// failing reason, or "" when the coupon may be applied. The validity window
// is half-open: valid at ValidFrom, no longer valid at ValidTo.
func CouponRejection(coupon *models.Coupon, subtotal decimal.Decimal, now time.Time) string {
	if !coupon.Active {
		return CouponReasonInactive
	}
	if now.Before(coupon.ValidFrom) || !now.Before(coupon.ValidTo) {
		return CouponReasonOutsideWindow
	}
	if coupon.UsedCount >= coupon.UsageLimit {
		return CouponReasonExhausted
	}
	if subtotal.LessThan(coupon.MinPurchaseAmount) {
		return CouponReasonBelowMinimum
	}
	return ""
}

// CouponService defines the interface for coupon business logic. Validation
// here never redeems: used_count moves only inside the order-creation
// transaction.
type CouponService interface {
	CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, *ServiceError)
	ValidateCoupon(ctx context.Context, req *models.ValidateCouponRequest) (*models.ValidateCouponResponse, *ServiceError)
	GetCoupon(ctx context.Context, code string) (*models.Coupon, *ServiceError)
	DeactivateCoupon(ctx context.Context, code string) *ServiceError
	ListCoupons(ctx context.Context, page, limit int) ([]models.Coupon, int64, *ServiceError)
}

type couponServiceImpl struct {
	repo   repository.CouponRepository
	logger *zap.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo repository.CouponRepository, logger *zap.Logger) CouponService {
	return &couponServiceImpl{repo: repo, logger: logger}
}

func (s *couponServiceImpl) CreateCoupon(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, *ServiceError) {
	if !req.ValidFrom.Before(req.ValidTo) {
		return nil, validationError("valid_from must be before valid_to")
	}
	if req.DiscountValue.IsNegative() {
		return nil, validationError("discount_value cannot be negative")
	}
	if req.DiscountType == models.DiscountTypePercentage && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, validationError("percentage discount cannot exceed 100")
	}
	if req.MinPurchaseAmount.IsNegative() {
		return nil, validationError("min_purchase_amount cannot be negative")
	}

	coupon := &models.Coupon{
		Code:              strings.ToUpper(req.Code),
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MinPurchaseAmount: req.MinPurchaseAmount,
		ValidFrom:         req.ValidFrom,
		ValidTo:           req.ValidTo,
		UsageLimit:        req.UsageLimit,
		Active:            true,
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return nil, conflictError("Coupon code already exists")
		}
		s.logger.Error("Failed to create coupon", zap.Error(err))
		return nil, internalError("Failed to create coupon")
	}

	s.logger.Info("Coupon created",
		zap.String("code", coupon.Code),
		zap.String("discount_type", string(coupon.DiscountType)),
	)
	return coupon, nil
}

func (s *couponServiceImpl) ValidateCoupon(ctx context.Context, req *models.ValidateCouponRequest) (*models.ValidateCouponResponse, *ServiceError) {
	code := strings.ToUpper(req.Code)

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.ValidateCouponResponse{
				Valid:          false,
				Code:           code,
				DiscountAmount: decimal.Zero,
				Reason:         CouponReasonNotFound,
			}, nil
		}
		s.logger.Error("Coupon lookup failed", zap.String("code", code), zap.Error(err))
		return nil, internalError("Failed to validate coupon")
	}

	if reason := CouponRejection(coupon, req.Subtotal, time.Now()); reason != "" {
		return &models.ValidateCouponResponse{
			Valid:          false,
			Code:           code,
			DiscountAmount: decimal.Zero,
			Reason:         reason,
		}, nil
	}

	return &models.ValidateCouponResponse{
		Valid:          true,
		Code:           code,
		DiscountAmount: DiscountFor(coupon, req.Subtotal),
	}, nil
}

func (s *couponServiceImpl) GetCoupon(ctx context.Context, code string) (*models.Coupon, *ServiceError) {
	coupon, err := s.repo.FindByCode(ctx, strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Coupon not found")
		}
		s.logger.Error("Coupon lookup failed", zap.String("code", code), zap.Error(err))
		return nil, internalError("Failed to fetch coupon")
	}
	return coupon, nil
}

func (s *couponServiceImpl) DeactivateCoupon(ctx context.Context, code string) *ServiceError {
	if err := s.repo.Deactivate(ctx, strings.ToUpper(code)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("Coupon not found")
		}
		s.logger.Error("Failed to deactivate coupon", zap.String("code", code), zap.Error(err))
		return internalError("Failed to deactivate coupon")
	}

	s.logger.Info("Coupon deactivated", zap.String("code", strings.ToUpper(code)))
	return nil
}

func (s *couponServiceImpl) ListCoupons(ctx context.Context, page, limit int) ([]models.Coupon, int64, *ServiceError) {
	coupons, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list coupons", zap.Error(err))
		return nil, 0, internalError("Failed to list coupons")
	}
	return coupons, total, nil
}
