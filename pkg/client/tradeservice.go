package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"chain-swap/pkg/types"
)

const requestTimeout = 30 * time.Second

// TradeService is the set of trade-service operations the orchestrator
// depends on.
type TradeService interface {
	GetQuote(ctx context.Context, req *types.GetQuoteRequest) (*types.GetQuoteResponse, error)
	GetBestRoute(ctx context.Context, req *types.GetBestRouteRequest) (*types.GetBestRouteResponse, error)
	GetCallData(ctx context.Context, req *types.GetCallDataRequest) (*types.GetCallDataResponse, error)
	RegisterIntent(ctx context.Context, req *types.RegisterIntentRequest) (json.RawMessage, error)
	GetOrderDetails(ctx context.Context, req *types.GetOrderDetailsRequest) (*types.OrderDetails, error)
}

// Client is the HTTP implementation of TradeService. Every operation is an
// authenticated JSON POST whose response arrives wrapped in a
// {status, error, data} envelope; Client unwraps the envelope and returns
// the data payload.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a trade-service client for a resolved environment.
func New(baseURL, apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

// GetQuote returns an indicative output amount for a trade.
func (c *Client) GetQuote(ctx context.Context, req *types.GetQuoteRequest) (*types.GetQuoteResponse, error) {
	var resp types.GetQuoteResponse
	if err := c.post(ctx, "/get-quote", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBestRoute returns the executable route for a trade.
func (c *Client) GetBestRoute(ctx context.Context, req *types.GetBestRouteRequest) (*types.GetBestRouteResponse, error) {
	var resp types.GetBestRouteResponse
	if err := c.post(ctx, "/get-best-route", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCallData returns executable transaction data for a route.
func (c *Client) GetCallData(ctx context.Context, req *types.GetCallDataRequest) (*types.GetCallDataResponse, error) {
	var resp types.GetCallDataResponse
	if err := c.post(ctx, "/get-call-data", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterIntent registers a signed cross-chain order. The data payload is
// implementation-defined and treated as the order identifier by callers, so
// it is returned raw.
func (c *Client) RegisterIntent(ctx context.Context, req *types.RegisterIntentRequest) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.post(ctx, "/intent/register", req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetOrderDetails looks up the status of a registered order.
func (c *Client) GetOrderDetails(ctx context.Context, req *types.GetOrderDetailsRequest) (*types.OrderDetails, error) {
	var resp types.OrderDetails
	if err := c.post(ctx, "/order-details", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	c.log.Debug("trade service request", zap.String("path", path), zap.Int("bytes", len(payload)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trade service %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", path, err)
	}

	var envelope types.Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("trade service %s: %s: %s", path, resp.Status, raw)
		}
		return fmt.Errorf("parsing %s envelope: %w", path, err)
	}

	if envelope.Error != nil && envelope.Error.Message != "" {
		return fmt.Errorf("trade service %s: %s", path, envelope.Error.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("trade service %s: %s: %s", path, resp.Status, raw)
	}

	c.log.Debug("trade service response", zap.String("path", path), zap.Int("bytes", len(envelope.Data)))

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("parsing %s data: %w", path, err)
	}
	return nil
}
