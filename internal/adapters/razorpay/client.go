package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/HysterChat/pinco-clone/internal/domain"
	"github.com/HysterChat/pinco-clone/internal/infra/metrics"
)

const defaultBaseURL = "https://api.razorpay.com"

// ErrNotConfigured возвращается, если не заданы ключи.
var ErrNotConfigured = errors.New("razorpay credentials are not configured")

// Config задаёт доступ к API.
type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// Client создаёт заказы и проверяет подписи платежей.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

var _ domain.PaymentGateway = (*Client)(nil)

// NewClient создаёт клиента.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

// SetHTTPClient подменяет HTTP-клиента.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient != nil {
		c.httpClient = httpClient
	}
}

// KeyID возвращает публичный ключ для виджета оплаты.
func (c *Client) KeyID() string {
	return c.cfg.KeyID
}

type createOrderRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Receipt        string            `json:"receipt,omitempty"`
	PaymentCapture int               `json:"payment_capture"`
	Notes          map[string]string `json:"notes,omitempty"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder создаёт заказ через POST /v1/orders.
func (c *Client) CreateOrder(ctx context.Context, req domain.GatewayOrderRequest) (domain.GatewayOrder, error) {
	if c.cfg.KeyID == "" || c.cfg.KeySecret == "" {
		return domain.GatewayOrder{}, ErrNotConfigured
	}
	currency := req.Amount.Currency
	if currency == "" {
		currency = domain.CurrencyINR
	}
	body, err := json.Marshal(createOrderRequest{
		Amount:         req.Amount.Amount,
		Currency:       currency,
		Receipt:        req.Receipt,
		PaymentCapture: 1,
		Notes:          req.Notes,
	})
	if err != nil {
		return domain.GatewayOrder{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.GatewayOrder{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.ObserveNetworkRequest("razorpay", "create_order", "orders", start, err)
	if err != nil {
		return domain.GatewayOrder{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.GatewayOrder{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Description != "" {
			return domain.GatewayOrder{}, fmt.Errorf("razorpay create order failed (%d %s): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Description)
		}
		return domain.GatewayOrder{}, fmt.Errorf("razorpay create order failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out orderResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return domain.GatewayOrder{}, fmt.Errorf("decode response: %w", err)
	}
	if out.ID == "" {
		return domain.GatewayOrder{}, fmt.Errorf("razorpay create order: empty order id")
	}
	return domain.GatewayOrder{ID: out.ID, Amount: out.Amount, Currency: out.Currency, Status: out.Status}, nil
}
