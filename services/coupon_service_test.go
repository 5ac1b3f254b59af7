package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/services"
)

func newTestCouponService(store *memStore) services.CouponService {
	logger, _ := zap.NewDevelopment()
	return services.NewCouponService(store.Coupons(), logger)
}

func TestCouponRejection_ChecksInOrder(t *testing.T) {
	now := time.Now()
	base := func() *models.Coupon {
		return &models.Coupon{
			Code:              "SAVE10",
			DiscountType:      models.DiscountTypePercentage,
			DiscountValue:     dec("10"),
			MinPurchaseAmount: dec("100.00"),
			ValidFrom:         now.Add(-time.Hour),
			ValidTo:           now.Add(time.Hour),
			UsageLimit:        5,
			UsedCount:         0,
			Active:            true,
		}
	}

	// a coupon failing every check reports inactive first
	c := base()
	c.Active = false
	c.ValidTo = now.Add(-time.Minute)
	c.UsedCount = 5
	assert.Equal(t, services.CouponReasonInactive, services.CouponRejection(c, dec("10.00"), now))

	c = base()
	c.ValidFrom = now.Add(time.Minute)
	c.UsedCount = 5
	assert.Equal(t, services.CouponReasonOutsideWindow, services.CouponRejection(c, dec("10.00"), now))

	c = base()
	c.UsedCount = 5
	assert.Equal(t, services.CouponReasonExhausted, services.CouponRejection(c, dec("10.00"), now))

	c = base()
	assert.Equal(t, services.CouponReasonBelowMinimum, services.CouponRejection(c, dec("99.99"), now))

	c = base()
	assert.Equal(t, "", services.CouponRejection(c, dec("100.00"), now))
}

func TestCouponRejection_WindowIsHalfOpen(t *testing.T) {
	now := time.Now()
	c := &models.Coupon{
		Code:          "WINDOW",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: dec("5.00"),
		ValidFrom:     now,
		ValidTo:       now.Add(time.Hour),
		UsageLimit:    1,
		Active:        true,
	}

	// valid at the instant the window opens
	assert.Equal(t, "", services.CouponRejection(c, dec("50.00"), c.ValidFrom))
	// no longer valid at the instant it closes
	assert.Equal(t, services.CouponReasonOutsideWindow, services.CouponRejection(c, dec("50.00"), c.ValidTo))
}

func TestCreateCoupon_UppercasesCodeAndValidates(t *testing.T) {
	store := newMemStore()
	svc := newTestCouponService(store)

	coupon, svcErr := svc.CreateCoupon(context.Background(), &models.CreateCouponRequest{
		Code:          "save10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: dec("10"),
		ValidFrom:     time.Now(),
		ValidTo:       time.Now().Add(24 * time.Hour),
		UsageLimit:    100,
	})
	require.Nil(t, svcErr)
	assert.Equal(t, "SAVE10", coupon.Code)
	assert.True(t, coupon.Active)
}

func TestCreateCoupon_RejectsInvertedWindow(t *testing.T) {
	store := newMemStore()
	svc := newTestCouponService(store)

	_, svcErr := svc.CreateCoupon(context.Background(), &models.CreateCouponRequest{
		Code:          "BAD",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: dec("5.00"),
		ValidFrom:     time.Now().Add(time.Hour),
		ValidTo:       time.Now(),
		UsageLimit:    1,
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestCreateCoupon_RejectsPercentageOver100(t *testing.T) {
	store := newMemStore()
	svc := newTestCouponService(store)

	_, svcErr := svc.CreateCoupon(context.Background(), &models.CreateCouponRequest{
		Code:          "BAD",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: dec("150"),
		ValidFrom:     time.Now(),
		ValidTo:       time.Now().Add(time.Hour),
		UsageLimit:    1,
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
}

func TestCreateCoupon_DuplicateCodeConflicts(t *testing.T) {
	store := newMemStore()
	svc := newTestCouponService(store)

	req := &models.CreateCouponRequest{
		Code:          "SAVE10",
		DiscountType:  models.DiscountTypeFixed,
		DiscountValue: dec("5.00"),
		ValidFrom:     time.Now(),
		ValidTo:       time.Now().Add(time.Hour),
		UsageLimit:    10,
	}
	_, svcErr := svc.CreateCoupon(context.Background(), req)
	require.Nil(t, svcErr)

	_, svcErr = svc.CreateCoupon(context.Background(), req)
	require.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
}

func TestValidateCoupon_NeverConsumesUsage(t *testing.T) {
	store := newMemStore()
	svc := newTestCouponService(store)

	coupon := percentCoupon("SAVE10", "10", "0")
	coupon.UsageLimit = 1
	require.NoError(t, store.Coupons().Create(context.Background(), coupon))

	for i := 0; i < 3; i++ {
		resp, svcErr := svc.ValidateCoupon(context.Background(), &models.ValidateCouponRequest{
			Code:     "save10",
			Subtotal: dec("200.00"),
		})
		require.Nil(t, svcErr)
		assert.True(t, resp.Valid)
		assert.True(t, resp.DiscountAmount.Equal(dec("20.00")))
	}

	stored, err := store.Coupons().FindByCode(context.Background(), "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsedCount)
}

func TestValidateCoupon_UnknownCodeIsInvalidNotError(t *testing.T) {
	store := newMemStore()
	svc := newTestCouponService(store)

	resp, svcErr := svc.ValidateCoupon(context.Background(), &models.ValidateCouponRequest{
		Code:     "NOPE",
		Subtotal: dec("200.00"),
	})
	require.Nil(t, svcErr)
	assert.False(t, resp.Valid)
	assert.Equal(t, services.CouponReasonNotFound, resp.Reason)
	assert.True(t, resp.DiscountAmount.IsZero())
}

func TestDeactivateCoupon(t *testing.T) {
	store := newMemStore()
	svc := newTestCouponService(store)

	require.NoError(t, store.Coupons().Create(context.Background(), percentCoupon("SAVE10", "10", "0")))

	svcErr := svc.DeactivateCoupon(context.Background(), "save10")
	require.Nil(t, svcErr)

	resp, svcErr := svc.ValidateCoupon(context.Background(), &models.ValidateCouponRequest{
		Code:     "SAVE10",
		Subtotal: dec("200.00"),
	})
	require.Nil(t, svcErr)
	assert.False(t, resp.Valid)
	assert.Equal(t, services.CouponReasonInactive, resp.Reason)

	svcErr = svc.DeactivateCoupon(context.Background(), "MISSING")
	require.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}
