package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kirillov6/marketplace-service/internal/config"
	"github.com/kirillov6/marketplace-service/pkg/utils"
)

// ErrGatewayRejected marks 4xx answers; retrying those is pointless.
var ErrGatewayRejected = errors.New("gateway rejected request")

// Client talks to the hosted payment gateway. Prices are always sent
// in minor units (cents), re-priced server-side by the caller.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	retry     utils.RetryConfig
}

func NewClient(cfg config.Gateway) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: cfg.Timeout},
		retry: utils.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     2 * time.Second,
		},
	}
}

type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
	Currency   string `json:"currency"`
	Image      string `json:"image,omitempty"`
}

type SessionParams struct {
	LineItems         []LineItem        `json:"line_items"`
	Mode              string            `json:"mode"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
	ClientReferenceID string            `json:"client_reference_id"`
	CustomerEmail     string            `json:"customer_email,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession retries transient failures; a duplicate
// session on the gateway side is harmless because only the one whose
// id we store gets completed.
func (c *Client) CreateCheckoutSession(ctx context.Context, params SessionParams) (Session, error) {
	if params.Mode == "" {
		params.Mode = "payment"
	}

	body, err := json.Marshal(params)
	if err != nil {
		return Session{}, fmt.Errorf("failed to marshal session params: %w", err)
	}

	var session Session
	err = utils.Retry(c.retry, func() error {
		var err error
		session, err = c.createSession(ctx, body)
		return err
	}, ErrGatewayRejected, context.Canceled, context.DeadlineExceeded)
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

func (c *Client) createSession(ctx context.Context, body []byte) (Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	res, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("gateway request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 && res.StatusCode < 500 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return Session{}, fmt.Errorf("%w: %d: %s", ErrGatewayRejected, res.StatusCode, msg)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return Session{}, fmt.Errorf("gateway returned %d: %s", res.StatusCode, msg)
	}

	var session Session
	if err := json.NewDecoder(res.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}
