package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayStatus is the closed set of transaction states the payment gateway
// can report. Anything outside the known vocabulary parses to
// GatewayStatusUnrecognized and is never treated as success or failure.
type GatewayStatus int

const (
	GatewayStatusUnrecognized GatewayStatus = iota
	GatewayStatusComplete
	GatewayStatusPending
	GatewayStatusCanceled
	GatewayStatusFailed
	GatewayStatusExpired
	GatewayStatusNotFound
)

// ParseGatewayStatus maps the gateway's status string onto the closed set.
func ParseGatewayStatus(s string) GatewayStatus {
	switch s {
	case "COMPLETE":
		return GatewayStatusComplete
	case "PENDING":
		return GatewayStatusPending
	case "CANCELED":
		return GatewayStatusCanceled
	case "FAILED", "FULL_REFUND", "PARTIAL_REFUND":
		return GatewayStatusFailed
	case "EXPIRED":
		return GatewayStatusExpired
	case "NOT_FOUND":
		return GatewayStatusNotFound
	default:
		return GatewayStatusUnrecognized
	}
}

// GatewayResult is the interpreted outcome of a gateway status check.
// RawJSON holds the unmodified response body for audit storage.
type GatewayResult struct {
	Status    GatewayStatus
	RawStatus string
	RefID     string
	RawJSON   string
}

// GatewayClient checks the state of a transaction with the payment gateway.
type GatewayClient interface {
	CheckTransaction(ctx context.Context, transactionUUID string, amount decimal.Decimal) (*GatewayResult, error)
}

// EsewaClient verifies transactions against the eSewa status API.
type EsewaClient struct {
	BaseURL     string
	ProductCode string
	httpClient  *http.Client
}

// NewEsewaClient creates a gateway client for the given environment.
func NewEsewaClient(baseURL, productCode string) *EsewaClient {
	return &EsewaClient{
		BaseURL:     baseURL,
		ProductCode: productCode,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type esewaStatusResponse struct {
	ProductCode     string      `json:"product_code"`
	TransactionUUID string      `json:"transaction_uuid"`
	TotalAmount     json.Number `json:"total_amount"`
	Status          string      `json:"status"`
	RefID           string      `json:"ref_id"`
}

// CheckTransaction queries the gateway's transaction status endpoint with
// the product code, snapshotted amount and correlation id.
func (c *EsewaClient) CheckTransaction(ctx context.Context, transactionUUID string, amount decimal.Decimal) (*GatewayResult, error) {
	params := url.Values{}
	params.Set("product_code", c.ProductCode)
	params.Set("total_amount", FormatGatewayAmount(amount))
	params.Set("transaction_uuid", transactionUUID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway response read failed: %w", err)
	}

	var parsed esewaStatusResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("gateway response malformed: %w", err)
	}

	return &GatewayResult{
		Status:    ParseGatewayStatus(parsed.Status),
		RawStatus: parsed.Status,
		RefID:     parsed.RefID,
		RawJSON:   string(body),
	}, nil
}

// FormatGatewayAmount renders an amount the way the gateway expects: whole
// numbers without a fractional part ("100", not "100.00"), everything else
// with its exact decimal digits.
func FormatGatewayAmount(amount decimal.Decimal) string {
	if amount.IsInteger() {
		return amount.StringFixed(0)
	}
	return amount.String()
}
