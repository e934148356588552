// Package gateway is the client for the Swift mobile-money gateway. It
// issues push-payment (STK) requests and serves the transaction-list query
// used by the polling reconciliation fallback.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/beifitycom/backend/internal/logger"
	"github.com/beifitycom/backend/internal/models"
	"go.uber.org/zap"
)

const (
	// push requests are retried on transport/5xx failure only
	pushAttempts  = 3
	pushBackoff   = 500 * time.Millisecond
	clientTimeout = 10 * time.Second
)

// PushRequest is the gateway's push-payment payload.
type PushRequest struct {
	Amount            int    `json:"amount"`
	PhoneNumber       string `json:"phone_number"`
	ExternalReference string `json:"external_reference"`
	CallbackURL       string `json:"callback_url"`
	ChannelID         int    `json:"channel_id,omitempty"`
	CustomerName      string `json:"customer_name,omitempty"`
}

// PushResponse is the gateway's synchronous answer to a push request. The
// buyer completes the PIN prompt later; the final outcome arrives on the
// webhook.
type PushResponse struct {
	Success           bool   `json:"success"`
	Status            string `json:"status"`
	Reference         string `json:"reference"`
	TransactionID     string `json:"transaction_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id"`
}

// Transaction is one row of the gateway's transaction-list query.
type Transaction struct {
	TransactionID     string  `json:"transaction_id"`
	ExternalReference string  `json:"external_reference"`
	Status            string  `json:"status"`
	Amount            float64 `json:"amount"`
	PaidAt            string  `json:"paid_at"`
}

// StatusCompleted is the gateway's terminal success status.
const StatusCompleted = "completed"

// Client calls the Swift gateway over HTTP.
type Client struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	channelID   int
	callbackURL string
}

// NewClient creates a gateway client.
func NewClient(baseURL, apiKey string, channelID int, callbackURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: clientTimeout,
		},
		baseURL:     baseURL,
		apiKey:      apiKey,
		channelID:   channelID,
		callbackURL: callbackURL,
	}
}

// InitiatePush asks the gateway to push a payment prompt to the buyer's
// phone. Transport and 5xx failures are retried up to pushAttempts times
// with linear backoff; a gateway rejection is returned as a non-transient
// GatewayError. The call returns as soon as the gateway accepts the request.
func (c *Client) InitiatePush(ctx context.Context, req PushRequest) (*PushResponse, error) {
	if req.ChannelID == 0 {
		req.ChannelID = c.channelID
	}
	if req.CallbackURL == "" {
		req.CallbackURL = c.callbackURL
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= pushAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * pushBackoff):
			}
		}

		resp, err := c.post(ctx, "payments", body)
		if err != nil {
			var gwErr *models.GatewayError
			if !errors.As(err, &gwErr) || !gwErr.Transient {
				return nil, err
			}
			lastErr = err
			logger.Log.Debug("push payment attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*PushResponse, error) {
	u, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &models.GatewayError{Op: "push", Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &models.GatewayError{
			Op:        "push",
			Transient: true,
			Err:       fmt.Errorf("gateway returned %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &models.GatewayError{
			Op:  "push",
			Err: fmt.Errorf("gateway returned %d", resp.StatusCode),
		}
	}

	var pushResp PushResponse
	if err := json.NewDecoder(resp.Body).Decode(&pushResp); err != nil {
		return nil, &models.GatewayError{Op: "push", Err: err}
	}
	if !pushResp.Success {
		return nil, &models.GatewayError{
			Op:  "push",
			Err: fmt.Errorf("gateway rejected request: %s", pushResp.Status),
		}
	}

	return &pushResp, nil
}

// FindTransaction queries the gateway's transaction list and returns the
// entry matching the given external reference. Used by the polling
// verification fallback, always outside any open storage transaction.
func (c *Client) FindTransaction(ctx context.Context, externalRef string) (*Transaction, error) {
	u, err := url.JoinPath(c.baseURL, "transactions")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &models.GatewayError{Op: "list", Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &models.GatewayError{
			Op:        "list",
			Transient: resp.StatusCode >= http.StatusInternalServerError,
			Err:       fmt.Errorf("gateway returned %d", resp.StatusCode),
		}
	}

	var list struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &models.GatewayError{Op: "list", Err: err}
	}

	for i := range list.Transactions {
		if list.Transactions[i].ExternalReference == externalRef {
			return &list.Transactions[i], nil
		}
	}
	return nil, models.ErrDataNotFound
}
