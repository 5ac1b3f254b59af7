package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yogeshrijal/E-commerce/services"
)

func TestParseGatewayStatus(t *testing.T) {
	cases := map[string]services.GatewayStatus{
		"COMPLETE":       services.GatewayStatusComplete,
		"PENDING":        services.GatewayStatusPending,
		"CANCELED":       services.GatewayStatusCanceled,
		"FAILED":         services.GatewayStatusFailed,
		"FULL_REFUND":    services.GatewayStatusFailed,
		"PARTIAL_REFUND": services.GatewayStatusFailed,
		"EXPIRED":        services.GatewayStatusExpired,
		"NOT_FOUND":      services.GatewayStatusNotFound,
		"AMBIGUOUS":      services.GatewayStatusUnrecognized,
		"complete":       services.GatewayStatusUnrecognized,
		"":               services.GatewayStatusUnrecognized,
	}
	for raw, want := range cases {
		assert.Equal(t, want, services.ParseGatewayStatus(raw), "status %q", raw)
	}
}

func TestFormatGatewayAmount(t *testing.T) {
	// whole amounts lose their fractional part, others keep exact digits
	assert.Equal(t, "100", services.FormatGatewayAmount(dec("100.00")))
	assert.Equal(t, "100", services.FormatGatewayAmount(dec("100")))
	assert.Equal(t, "0", services.FormatGatewayAmount(dec("0.00")))
	assert.Equal(t, "99.99", services.FormatGatewayAmount(dec("99.99")))
	assert.Equal(t, "332.5", services.FormatGatewayAmount(dec("332.50")))
}

func TestEsewaClient_CheckTransaction(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"product_code":     q.Get("product_code"),
			"total_amount":     q.Get("total_amount"),
			"transaction_uuid": q.Get("transaction_uuid"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"product_code":"EPAYTEST","transaction_uuid":"txn-1","total_amount":100,"status":"COMPLETE","ref_id":"0001TX"}`))
	}))
	defer srv.Close()

	client := services.NewEsewaClient(srv.URL, "EPAYTEST")
	result, err := client.CheckTransaction(context.Background(), "txn-1", dec("100.00"))
	require.NoError(t, err)

	assert.Equal(t, "EPAYTEST", gotQuery["product_code"])
	assert.Equal(t, "100", gotQuery["total_amount"])
	assert.Equal(t, "txn-1", gotQuery["transaction_uuid"])

	assert.Equal(t, services.GatewayStatusComplete, result.Status)
	assert.Equal(t, "COMPLETE", result.RawStatus)
	assert.Equal(t, "0001TX", result.RefID)
	assert.Contains(t, result.RawJSON, `"ref_id":"0001TX"`)
}

func TestEsewaClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	client := services.NewEsewaClient(srv.URL, "EPAYTEST")
	_, err := client.CheckTransaction(context.Background(), "txn-1", dec("100.00"))
	require.Error(t, err)
}
