package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lingora/payment-service/internal/domain/billing"
)

const (
	sandboxBaseURL = "https://api-m.sandbox.paypal.com"
	liveBaseURL    = "https://api-m.paypal.com"

	// refresh the cached token slightly before PayPal expires it
	tokenExpirySlack = 60 * time.Second
)

// Client calls the PayPal Orders v2 REST API. PayPal has no maintained Go
// SDK, so this is a hand-rolled client with the same ProviderError contract
// as the Stripe client. The OAuth access token is cached across requests.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Order is the subset of a PayPal order this service reports back.
type Order struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CaptureID string `json:"capture_id,omitempty"`
}

func New(clientID, secret, environment string, timeout time.Duration, logger *zap.Logger) *Client {
	baseURL := sandboxBaseURL
	if environment == "live" {
		baseURL = liveBaseURL
	}
	return NewWithBaseURL(baseURL, clientID, secret, timeout, logger)
}

func NewWithBaseURL(baseURL, clientID, secret string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Configured reports whether credentials are present. Missing credentials are
// a deployment problem surfaced per request, not at startup.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.secret != ""
}

// CreateOrder creates a one-shot CAPTURE-intent order for the given amount.
// Amount is in major units already formatted for PayPal (e.g. "14.99").
func (c *Client) CreateOrder(ctx context.Context, referenceID, amount, currency, description string) (*Order, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": referenceID,
				"description":  description,
				"amount": map[string]string{
					"currency_code": strings.ToUpper(currency),
					"value":         amount,
				},
			},
		},
	}

	var resp struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("paypal order created",
		zap.String("order_id", resp.ID),
		zap.String("reference_id", referenceID),
		zap.String("status", resp.Status))

	return &Order{ID: resp.ID, Status: resp.Status}, nil
}

// CaptureOrder captures a previously approved order.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Order, error) {
	var resp struct {
		ID            string `json:"id"`
		Status        string `json:"status"`
		PurchaseUnits []struct {
			Payments struct {
				Captures []struct {
					ID string `json:"id"`
				} `json:"captures"`
			} `json:"payments"`
		} `json:"purchase_units"`
	}
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := c.do(ctx, http.MethodPost, path, map[string]interface{}{}, &resp); err != nil {
		return nil, err
	}

	order := &Order{ID: resp.ID, Status: resp.Status}
	for _, unit := range resp.PurchaseUnits {
		if len(unit.Payments.Captures) > 0 {
			order.CaptureID = unit.Payments.Captures[0].ID
			break
		}
	}

	c.logger.Info("paypal order captured",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status),
		zap.String("capture_id", order.CaptureID))

	return order, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return &billing.ProviderError{
			Code:    "MARSHAL_ERROR",
			Message: "Failed to prepare request",
			Details: err.Error(),
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return &billing.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create request",
			Details: err.Error(),
		}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("paypal request failed", zap.String("path", path), zap.Error(err))
		return &billing.ProviderError{
			Code:    "API_ERROR",
			Message: "PayPal API request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &billing.ProviderError{
			Code:    "RESPONSE_ERROR",
			Message: "Failed to read response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		}
		json.Unmarshal(respBody, &errResp)

		c.logger.Error("paypal request rejected",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		message := errResp.Message
		if message == "" {
			message = fmt.Sprintf("PayPal returned status %d", resp.StatusCode)
		}
		return &billing.ProviderError{
			Code:    errResp.Name,
			Message: message,
			Details: string(respBody),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &billing.ProviderError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse response",
			Details: err.Error(),
		}
	}
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", &billing.ProviderError{
			Code:    "REQUEST_ERROR",
			Message: "Failed to create token request",
			Details: err.Error(),
		}
	}
	req.SetBasicAuth(c.clientID, c.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &billing.ProviderError{
			Code:    "API_ERROR",
			Message: "PayPal token request failed",
			Details: err.Error(),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &billing.ProviderError{
			Code:    "RESPONSE_ERROR",
			Message: "Failed to read token response",
			Details: err.Error(),
		}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("paypal token request rejected",
			zap.Int("status_code", resp.StatusCode))
		return "", &billing.ProviderError{
			Code:    "AUTH_ERROR",
			Message: "PayPal authentication failed",
			Details: string(respBody),
		}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return "", &billing.ProviderError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse token response",
			Details: err.Error(),
		}
	}

	c.token = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpirySlack)

	return c.token, nil
}
