package addressapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const networkErrorMessage = "Errore di rete."

type HTTPOptions struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Client           *http.Client
}

// HTTPClient is the real backend adapter. Backend error bodies are surfaced verbatim.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewHTTPClient(opts HTTPOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	threshold := opts.FailureThreshold
	settings := gobreaker.Settings{
		Name:        "address-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Business rejections (4xx) say nothing about backend health.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status > 0 && apiErr.Status < http.StatusInternalServerError {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Address API circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// ListAddresses calls GET /customers/{customerId}/addresses.
func (c *HTTPClient) ListAddresses(ctx context.Context, customerID string) ([]Address, error) {
	var body struct {
		Items []Address `json:"items"`
	}

	if err := c.requestJSON(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID)+"/addresses", nil, &body); err != nil {
		return nil, err
	}

	return body.Items, nil
}

// CreateAddress calls POST /customers/{customerId}/addresses.
func (c *HTTPClient) CreateAddress(ctx context.Context, customerID string, payload AddressInput) (*Address, error) {
	var address Address

	if err := c.requestJSON(ctx, http.MethodPost, "/customers/"+url.PathEscape(customerID)+"/addresses", payload, &address); err != nil {
		return nil, err
	}

	return &address, nil
}

// UpdateAddress calls PUT /addresses/{addressId}.
func (c *HTTPClient) UpdateAddress(ctx context.Context, addressID string, payload AddressInput) (*Address, error) {
	var address Address

	if err := c.requestJSON(ctx, http.MethodPut, "/addresses/"+url.PathEscape(addressID), payload, &address); err != nil {
		return nil, err
	}

	return &address, nil
}

// SetOrderDeliveryAddress calls PATCH /orders/{orderId}/delivery-address.
func (c *HTTPClient) SetOrderDeliveryAddress(ctx context.Context, orderID, addressID, deliveryInstructions string) (*SyncResponse, error) {
	payload := struct {
		AddressID            string `json:"addressId"`
		DeliveryInstructions string `json:"deliveryInstructions,omitempty"`
	}{AddressID: addressID, DeliveryInstructions: deliveryInstructions}

	var sync SyncResponse

	if err := c.requestJSON(ctx, http.MethodPatch, "/orders/"+url.PathEscape(orderID)+"/delivery-address", payload, &sync); err != nil {
		return nil, err
	}

	return &sync, nil
}

func (c *HTTPClient) requestJSON(ctx context.Context, method, path string, payload any, out any) error {

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request for %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, parseError(resp.StatusCode, data)
		}

		return data, nil
	})

	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}

		slog.Warn("Address API request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))

		return &APIError{Code: CodeUnknown, Message: networkErrorMessage}
	}

	if err := json.Unmarshal(body, out); err != nil {
		slog.Warn("Address API returned an unreadable body",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()))

		return &APIError{Code: CodeUnknown, Message: networkErrorMessage}
	}

	return nil
}

func parseError(status int, body []byte) *APIError {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" && apiErr.Message != "" {
		apiErr.Status = status
		return &apiErr
	}

	return &APIError{Code: CodeUnknown, Message: networkErrorMessage, Status: status}
}
