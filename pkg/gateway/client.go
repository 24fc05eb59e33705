package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/satriaputra/tokopos-backend/pkg/config"
	"github.com/satriaputra/tokopos-backend/pkg/enums"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/logger"
)

var (
	errBaseURLRequired   = errors.New("gateway base url is required")
	errServerKeyRequired = errors.New("gateway server key is required")
	errLoggerRequired    = errors.New("gateway logger is required")
)

// Client wraps the external payment gateway's session API with centralized
// auth, logging, and error mapping.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serverKey  string
	sessionTTL time.Duration
	logger     *logger.Logger
}

// SessionParams describes the charge to open a hosted payment session for.
type SessionParams struct {
	OrderID          string
	GrossAmountCents int64
	PaymentMethod    enums.PaymentMethod
	ExpiresAt        time.Time
}

// Session is the gateway's handle for an in-flight payment.
type Session struct {
	Token       string    `json:"token"`
	RedirectURL string    `json:"redirect_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// StatusResult reports the gateway-side state of a payment.
type StatusResult struct {
	OrderID   string `json:"order_id"`
	RawStatus string `json:"transaction_status"`
}

// NewClient validates the gateway credentials and builds the HTTP wrapper.
func NewClient(cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	serverKey := strings.TrimSpace(cfg.ServerKey)
	if serverKey == "" {
		return nil, errServerKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		serverKey:  serverKey,
		sessionTTL: cfg.SessionTTL,
		logger:     logg,
	}, nil
}

// SessionTTL reports how long new sessions stay payable.
func (c *Client) SessionTTL() time.Duration {
	if c == nil || c.sessionTTL <= 0 {
		return 24 * time.Hour
	}
	return c.sessionTTL
}

// SigningKey returns the shared secret used to verify webhook signatures.
func (c *Client) SigningKey() string {
	if c == nil {
		return ""
	}
	return c.serverKey
}

// CreateSession opens a hosted payment session for the given order.
func (c *Client) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	if strings.TrimSpace(params.OrderID) == "" {
		return nil, fmt.Errorf("order id is required")
	}
	if params.GrossAmountCents <= 0 {
		return nil, fmt.Errorf("gross amount must be positive")
	}
	if !params.PaymentMethod.IsGateway() {
		return nil, fmt.Errorf("payment method %q is not gateway-backed", params.PaymentMethod)
	}

	body := map[string]any{
		"transaction_details": map[string]any{
			"order_id":     params.OrderID,
			"gross_amount": params.GrossAmountCents,
		},
		"payment_type": params.PaymentMethod.String(),
	}
	if !params.ExpiresAt.IsZero() {
		body["expiry"] = map[string]any{
			"expire_at": params.ExpiresAt.UTC().Format(time.RFC3339),
		}
	}

	c.log(ctx, "request", "create_session", map[string]any{
		"order_id":     params.OrderID,
		"gross_amount": params.GrossAmountCents,
		"payment_type": params.PaymentMethod.String(),
	})

	var session Session
	if err := c.do(ctx, http.MethodPost, "/v2/sessions", body, &session); err != nil {
		c.log(ctx, "error", "create_session", map[string]any{"error": err.Error()})
		return nil, err
	}
	if session.ExpiresAt.IsZero() {
		session.ExpiresAt = time.Now().UTC().Add(c.SessionTTL())
	}

	c.log(ctx, "response", "create_session", map[string]any{
		"order_id":   params.OrderID,
		"expires_at": session.ExpiresAt,
	})
	return &session, nil
}

// GetStatus polls the gateway for the current state of an order.
func (c *Client) GetStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("order id is required")
	}

	c.log(ctx, "request", "get_status", map[string]any{"order_id": orderID})

	var result StatusResult
	path := fmt.Sprintf("/v2/sessions/%s/status", url.PathEscape(orderID))
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		c.log(ctx, "error", "get_status", map[string]any{"error": err.Error()})
		return nil, err
	}
	if result.OrderID == "" {
		result.OrderID = orderID
	}

	c.log(ctx, "response", "get_status", map[string]any{
		"order_id": result.OrderID,
		"status":   result.RawStatus,
	})
	return &result, nil
}

// SettledStatus maps the gateway's raw status vocabulary onto the local
// transaction lifecycle. Unknown statuses map to pending so ambiguous
// notifications never finalize a transaction.
func SettledStatus(raw string) enums.TransactionStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "settlement", "capture", "success":
		return enums.TransactionStatusCompleted
	case "cancel", "deny", "failure":
		return enums.TransactionStatusCancelled
	case "expire", "expired":
		return enums.TransactionStatusExpired
	default:
		return enums.TransactionStatusPending
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding gateway request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building gateway request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+basicKey(c.serverKey))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.GatewayUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.GatewayUnavailable(err)
	}

	if resp.StatusCode >= 400 {
		return c.mapGatewayError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding gateway response")
		}
	}
	return nil
}

func (c *Client) mapGatewayError(status int, raw []byte) error {
	var payload struct {
		Message string `json:"status_message"`
	}
	_ = json.Unmarshal(raw, &payload)
	msg := payload.Message
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	err := fmt.Errorf("gateway returned %d: %s", status, msg)
	return pkgerrors.Wrap(domainCodeForStatus(status), err, "gateway request failed")
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeStateConflict
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("gateway %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("gateway %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "key", "secret", "card", "cvv"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func basicKey(serverKey string) string {
	return base64.StdEncoding.EncodeToString([]byte(serverKey + ":"))
}
