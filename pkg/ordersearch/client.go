// Package ordersearch calls the order search endpoint for diagnostics only. Responses
// are logged and never returned to callers.
package ordersearch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Mode string

const (
	ModeTest Mode = "test"
	ModeMohd Mode = "mohd"
)

const maxLoggedBody = 4096

// BuildURL encodes the lookup query for the given mode. Test mode uses
// order_number/order_email, mohd mode uses order/email.
func BuildURL(base, orderID, email string, mode Mode) string {
	query := url.Values{}

	if mode == ModeMohd {
		query.Set("order", orderID)
		query.Set("email", email)
	} else {
		query.Set("order_number", orderID)
		query.Set("order_email", email)
	}

	return base + "?" + query.Encode()
}

type Client struct {
	baseURL string
	mode    Mode
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, mode Mode, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		mode:    mode,
		timeout: timeout,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:  logger.With(slog.String("component", "ordersearch")),
	}
}

// WithHTTPClient swaps the underlying client, mainly for tests.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.http = client

	return c
}

// Verify issues the lookup and logs what came back. It never fails.
func (c *Client) Verify(ctx context.Context, orderID, email string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := BuildURL(c.baseURL, orderID, email, c.mode)
	c.logger.Info("Order lookup started", slog.String("url", target), slog.String("mode", string(c.mode)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.logger.Warn("Order lookup error", slog.String("error", err.Error()))
		return
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Order lookup error", slog.String("error", err.Error()), slog.String("mode", string(c.mode)))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	if err != nil {
		c.logger.Warn("Order lookup body unreadable", slog.String("error", err.Error()))
	}

	c.logger.Info("Order lookup response",
		slog.Int("status", resp.StatusCode),
		slog.Bool("ok", resp.StatusCode >= 200 && resp.StatusCode < 300),
		slog.String("body", string(body)),
		slog.String("mode", string(c.mode)),
	)
}
