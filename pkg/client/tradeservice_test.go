package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"chain-swap/pkg/types"
)

func TestGetQuoteUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/get-quote", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req types.GetQuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "100000000", req.FromAmount)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","data":{"outputAmount":"42"}}`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	resp, err := c.GetQuote(context.Background(), &types.GetQuoteRequest{FromAmount: "100000000"})
	require.NoError(t, err)
	require.Equal(t, "42", resp.OutputAmount)
}

func TestEnvelopeErrorIsSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"error","error":{"code":400,"message":"insufficient liquidity"}}`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	_, err := c.GetBestRoute(context.Background(), &types.GetBestRouteRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient liquidity")
}

func TestNon2xxWithoutEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status":"error"}`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	_, err := c.GetCallData(context.Background(), &types.GetCallDataRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestMalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	_, err := c.GetQuote(context.Background(), &types.GetQuoteRequest{})
	require.Error(t, err)
}

func TestRegisterIntentReturnsRawData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/intent/register", r.URL.Path)

		var req types.RegisterIntentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "0xbytes", req.OrderBytes)

		_, _ = w.Write([]byte(`{"status":"success","data":"0xorder123"}`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	raw, err := c.RegisterIntent(context.Background(), &types.RegisterIntentRequest{OrderBytes: "0xbytes"})
	require.NoError(t, err)
	require.JSONEq(t, `"0xorder123"`, string(raw))
}

func TestGetOrderDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/order-details", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","data":{"status":"2","swapper":"0xme"}}`))
	}))
	defer server.Close()

	c := New(server.URL, "test-key", nil)
	details, err := c.GetOrderDetails(context.Background(), &types.GetOrderDetailsRequest{OrderID: "0xorder"})
	require.NoError(t, err)
	require.Equal(t, types.OrderStatusSettled, details.Status)
	require.Equal(t, "0xme", details.Swapper)
}
