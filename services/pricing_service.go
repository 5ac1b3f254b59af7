package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/repository"
)

// taxRate is the flat platform-wide tax applied to every order subtotal.
var taxRate = decimal.NewFromFloat(0.13)

// PricingLine is one order line as seen by the pricing engine.
type PricingLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals is the monetary breakdown of an order. All values are exact
// decimals; the total is clamped at zero.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// PricingService computes order totals from line items, destination and an
// optional, already-validated coupon.
type PricingService interface {
	ComputeTotals(ctx context.Context, lines []PricingLine, destinationCountry string, coupon *models.Coupon) (*Totals, *ServiceError)
}

type pricingServiceImpl struct {
	zones       repository.ShippingZoneRepository
	homeCountry string
	globalRate  decimal.Decimal
	logger      *zap.Logger
}

// NewPricingService creates a PricingService. homeCountry substitutes for a
// blank destination; globalRate applies to countries without a shipping zone.
func NewPricingService(zones repository.ShippingZoneRepository, homeCountry string, globalRate decimal.Decimal, logger *zap.Logger) PricingService {
	return &pricingServiceImpl{
		zones:       zones,
		homeCountry: homeCountry,
		globalRate:  globalRate,
		logger:      logger,
	}
}

func (s *pricingServiceImpl) ComputeTotals(ctx context.Context, lines []PricingLine, destinationCountry string, coupon *models.Coupon) (*Totals, *ServiceError) {
	if len(lines) == 0 {
		return nil, validationError("at least one item is required")
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, validationError("item quantity must be at least 1")
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	tax := subtotal.Mul(taxRate)

	shipping, svcErr := s.shippingCost(ctx, destinationCountry)
	if svcErr != nil {
		return nil, svcErr
	}

	discount := decimal.Zero
	if coupon != nil {
		// re-check the threshold against the realized subtotal, not just
		// whatever value the coupon was validated with
		if subtotal.GreaterThanOrEqual(coupon.MinPurchaseAmount) {
			discount = DiscountFor(coupon, subtotal)
		}
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &Totals{
		Subtotal:       subtotal,
		Tax:            tax,
		ShippingCost:   shipping,
		DiscountAmount: discount,
		Total:          total,
	}, nil
}

// shippingCost resolves a flat rate for the destination: exact zone match
// first, then the configured global rate. A blank destination means the
// home country.
func (s *pricingServiceImpl) shippingCost(ctx context.Context, country string) (decimal.Decimal, *ServiceError) {
	if country == "" {
		country = s.homeCountry
	}

	zone, err := s.zones.FindByCountry(ctx, country)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.globalRate, nil
		}
		s.logger.Error("Shipping zone lookup failed", zap.String("country", country), zap.Error(err))
		return decimal.Zero, internalError("Failed to resolve shipping cost")
	}

	return zone.Rate, nil
}

func decimalSum(lines []PricingLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return sum
}

// DiscountFor computes the discount a coupon yields against a subtotal.
func DiscountFor(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		return coupon.DiscountValue.Div(decimal.NewFromInt(100)).Mul(subtotal)
	case models.DiscountTypeFixed:
		return coupon.DiscountValue
	default:
		return decimal.Zero
	}
}
