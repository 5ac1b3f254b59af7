package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/repository"
)

// ShippingController handles admin CRUD for per-country shipping zones.
// The rates it manages are reference data consumed by the pricing engine.
type ShippingController struct {
	zones  repository.ShippingZoneRepository
	logger *zap.Logger
}

// NewShippingController creates a new ShippingController.
func NewShippingController(zones repository.ShippingZoneRepository, logger *zap.Logger) *ShippingController {
	return &ShippingController{zones: zones, logger: logger}
}

// CreateZone handles POST /admin/shipping-zones.
func (sc *ShippingController) CreateZone(c *gin.Context) {
	var req models.CreateShippingZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.Rate.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rate cannot be negative"})
		return
	}

	zone := &models.ShippingZone{
		CountryName: req.CountryName,
		Rate:        req.Rate,
	}
	if err := sc.zones.Create(c.Request.Context(), zone); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			c.JSON(http.StatusConflict, gin.H{"error": "Shipping zone already exists"})
			return
		}
		sc.logger.Error("Failed to create shipping zone", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create shipping zone"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"zone": zone})
}

// ListZones handles GET /admin/shipping-zones.
func (sc *ShippingController) ListZones(c *gin.Context) {
	zones, err := sc.zones.FindAll(c.Request.Context())
	if err != nil {
		sc.logger.Error("Failed to list shipping zones", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list shipping zones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"zones": zones})
}

// DeleteZone handles DELETE /admin/shipping-zones/:country.
func (sc *ShippingController) DeleteZone(c *gin.Context) {
	country := c.Param("country")
	if country == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Country is required"})
		return
	}

	if err := sc.zones.Delete(c.Request.Context(), country); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Shipping zone not found"})
			return
		}
		sc.logger.Error("Failed to delete shipping zone", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete shipping zone"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Shipping zone deleted"})
}
