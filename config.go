package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/yogeshrijal/E-commerce/database"
)

// Config holds all configuration for the service.
type Config struct {
	Port     string
	Postgres database.PostgresConfig

	JWTSecret string

	// HomeCountry substitutes for a blank destination country.
	HomeCountry string
	// GlobalShippingRate applies to destinations without a shipping zone.
	GlobalShippingRate decimal.Decimal

	EsewaStatusURL   string
	EsewaProductCode string

	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig reads configuration from environment variables, with a .env
// file as a local-development convenience.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kathmandu"),
		},
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		HomeCountry:      getEnv("HOME_COUNTRY", "Nepal"),
		EsewaStatusURL:   getEnv("ESEWA_STATUS_URL", "https://rc-epay.esewa.com.np/api/epay/transaction/status/"),
		EsewaProductCode: getEnv("ESEWA_PRODUCT_CODE", "EPAYTEST"),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "order-events"),
	}

	rate, err := decimal.NewFromString(getEnv("GLOBAL_SHIPPING_RATE", "200.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid GLOBAL_SHIPPING_RATE: %w", err)
	}
	cfg.GlobalShippingRate = rate

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
