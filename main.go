package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yogeshrijal/E-commerce/controllers"
	"github.com/yogeshrijal/E-commerce/database"
	"github.com/yogeshrijal/E-commerce/kafka"
	"github.com/yogeshrijal/E-commerce/models"
	"github.com/yogeshrijal/E-commerce/repository"
	"github.com/yogeshrijal/E-commerce/routes"
	"github.com/yogeshrijal/E-commerce/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	// --- Database ---
	db, err := database.Connect(cfg.Postgres, logger,
		&models.ProductSKU{},
		&models.ShippingZone{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}

	// --- Kafka (optional) ---
	var publisher services.EventPublisher
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = producer
		logger.Info("Kafka producer initialized",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	} else {
		logger.Warn("KAFKA_BROKERS not set, event publishing disabled")
	}

	// --- HTTP router ---
	r := gin.New()
	r.Use(gin.Recovery())

	// Structured HTTP request logging
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	})

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// --- Dependency injection ---
	store := repository.NewGormStore(db)
	gateway := services.NewEsewaClient(cfg.EsewaStatusURL, cfg.EsewaProductCode)

	pricingService := services.NewPricingService(store.ShippingZones(), cfg.HomeCountry, cfg.GlobalShippingRate, logger)
	couponService := services.NewCouponService(store.Coupons(), logger)
	orderService := services.NewOrderService(store, pricingService, publisher, cfg.HomeCountry, logger)
	paymentService := services.NewPaymentService(store, gateway, orderService, publisher, logger)

	routes.RegisterRoutes(r, routes.Controllers{
		Orders:   controllers.NewOrderController(orderService),
		Payments: controllers.NewPaymentController(paymentService),
		Coupons:  controllers.NewCouponController(couponService),
		Shipping: controllers.NewShippingController(store.ShippingZones(), logger),
	}, cfg.JWTSecret)

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Order Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Initiating graceful shutdown...")
	httpShutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(httpShutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	if producer != nil {
		producer.Close()
	}
	if err := database.Close(db); err != nil {
		logger.Error("Database close error", zap.Error(err))
	}

	log.Println("Order Service stopped gracefully")
}
