package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/services"
)

// PaymentController handles HTTP requests for payment operations.
type PaymentController struct {
	paymentService services.PaymentService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// InitiatePayment handles POST /payments/initiate.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	payment, svcErr := pc.paymentService.InitiatePayment(c.Request.Context(), actor, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// VerifyPayment handles POST /payments/verify. Both the paying client and
// the gateway's callback land here; repeated deliveries for an already
// settled payment return the settled record unchanged.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, svcErr := pc.paymentService.VerifyPayment(c.Request.Context(), req.TransactionUUID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayments handles GET /payments (the actor's own payments).
func (pc *PaymentController) GetPayments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	page, limit := pagination(c)
	resp, svcErr := pc.paymentService.ListPayments(c.Request.Context(), actor, page, limit)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}
