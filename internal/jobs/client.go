// Package jobs runs the scheduled integration jobs. Each job calls the CRM
// HTTP API as an ordinary client and appends one entry to its log file.
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"crm/internal/dto"
	apperrors "crm/internal/errors"
)

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to the CRM API. Transport failures and 5xx responses are
// retried up to MaxRetries times before giving up with a TransientIOError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		backoff:    500 * time.Millisecond,
		logger:     logger.With(zap.String("client", "CRMClient")),
		sleep:      sleepContext,
	}
}

func (c *Client) RestockLowStock(ctx context.Context) (*dto.RestockResponse, error) {
	var out dto.RestockResponse
	if err := c.do(ctx, http.MethodPost, "/products/restock", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the orders dated at or after from.
func (c *Client) ListOrders(ctx context.Context, from *time.Time) ([]dto.OrderResponse, error) {
	path := "/orders"
	if from != nil {
		q := url.Values{}
		q.Set("order_date_gte", from.UTC().Format(time.RFC3339))
		path += "?" + q.Encode()
	}

	var out dto.OrderListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]dto.CustomerResponse, error) {
	var out dto.CustomerListResponse
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	var out dto.CustomerEnvelope
	if err := c.do(ctx, http.MethodPost, "/customers", req, &out); err != nil {
		return nil, err
	}
	return &out.Customer, nil
}

func (c *Client) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	var out dto.ProductEnvelope
	if err := c.do(ctx, http.MethodPost, "/products", req, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) ListProducts(ctx context.Context, name string) ([]dto.ProductResponse, error) {
	path := "/products"
	if name != "" {
		path += "?" + url.Values{"name": {name}}.Encode()
	}

	var out dto.ProductListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	backoff := c.backoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("decoding %s %s response: %w", method, path, err)
			}
			return nil
		}

		if !isRetryable(ctx, err) {
			return err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		c.logger.Warn("api request retrying",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt+1),
			zap.Int("maxRetries", c.maxRetries),
			zap.Duration("sleep", backoff),
			zap.Error(err),
		)

		if err := c.sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
	}

	return apperrors.NewTransientIOError(fmt.Sprintf("%s %s: retries exhausted", method, path), lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return raw, nil
}

// isRetryable reports whether err is a transport failure or a server-side
// status worth another attempt. Nothing is retried once ctx is done.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode >= 500 || he.StatusCode == http.StatusTooManyRequests
	}

	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
