package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yogeshrijal/E-commerce/controllers"
	"github.com/yogeshrijal/E-commerce/middleware"
)

// Controllers bundles the handlers that RegisterRoutes wires up.
type Controllers struct {
	Orders   *controllers.OrderController
	Payments *controllers.PaymentController
	Coupons  *controllers.CouponController
	Shipping *controllers.ShippingController
}

// RegisterRoutes sets up all API routes.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, jwtSecret string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(jwtSecret)

	orders := r.Group("/orders")
	orders.Use(auth)
	orders.POST("", ctrl.Orders.CreateOrder)
	orders.GET("", ctrl.Orders.GetOrders)
	orders.GET("/:id", ctrl.Orders.GetOrderByID)
	orders.PATCH("/:id/status", ctrl.Orders.UpdateOrderStatus)

	payments := r.Group("/payments")
	payments.POST("/initiate", auth, ctrl.Payments.InitiatePayment)
	payments.GET("", auth, ctrl.Payments.GetPayments)
	// Gateway callback. No auth so the redirect from eSewa can land here.
	payments.POST("/verify", ctrl.Payments.VerifyPayment)

	coupons := r.Group("/coupons")
	coupons.Use(auth)
	coupons.POST("/validate", ctrl.Coupons.ValidateCoupon)
	coupons.GET("/:code", ctrl.Coupons.GetCoupon)

	admin := r.Group("/admin")
	admin.Use(auth, middleware.AdminOnly())
	admin.GET("/orders", ctrl.Orders.GetAllOrders)
	admin.POST("/coupons", ctrl.Coupons.CreateCoupon)
	admin.GET("/coupons", ctrl.Coupons.ListCoupons)
	admin.DELETE("/coupons/:code", ctrl.Coupons.DeactivateCoupon)
	admin.POST("/shipping-zones", ctrl.Shipping.CreateZone)
	admin.GET("/shipping-zones", ctrl.Shipping.ListZones)
	admin.DELETE("/shipping-zones/:country", ctrl.Shipping.DeleteZone)
}
