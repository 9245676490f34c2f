package deposits

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the payment provider's REST API. Requests are
// form-encoded and authenticated with the secret key; responses decode into
// the same wire types the webhook handler reads.
type Client struct {
	apiBase   string
	secretKey string
	http      *http.Client
}

// NewClient creates a payment provider API client
func NewClient(apiBase, secretKey string) *Client {
	return &Client{
		apiBase:   strings.TrimRight(apiBase, "/"),
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// PaymentIntent is the client-facing view of a provider payment intent.
type PaymentIntent struct {
	ID           string
	Status       string
	Amount       int64
	ClientSecret string
}

// CreatePaymentIntent opens a manual-capture intent so the deposit is held,
// not charged, until the cancellation policy decides its fate. Booking
// identifiers travel in metadata so webhook events can be correlated back.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency, bookingID, reference string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("capture_method", "manual")
	form.Set("metadata[booking_id]", bookingID)
	form.Set("metadata[booking_reference]", reference)

	return c.doIntent(ctx, "/v1/payment_intents", form)
}

// GetPaymentIntent retrieves an existing intent.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	return c.doIntent(ctx, "/v1/payment_intents/"+id, nil)
}

// CapturePaymentIntent captures all or part of an authorized intent.
// amountToCapture of 0 captures the full authorized amount.
func (c *Client) CapturePaymentIntent(ctx context.Context, id string, amountToCapture int64) (*PaymentIntent, error) {
	form := url.Values{}
	if amountToCapture > 0 {
		form.Set("amount_to_capture", strconv.FormatInt(amountToCapture, 10))
	}
	return c.doIntent(ctx, "/v1/payment_intents/"+id+"/capture", form)
}

// CancelPaymentIntent releases an uncaptured authorization.
func (c *Client) CancelPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("cancellation_reason", "requested_by_customer")
	return c.doIntent(ctx, "/v1/payment_intents/"+id+"/cancel", form)
}

// CreateRefund refunds a captured intent, partially when amount > 0.
func (c *Client) CreateRefund(ctx context.Context, paymentIntentID string, amount int64) error {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	if amount > 0 {
		form.Set("amount", strconv.FormatInt(amount, 10))
	}

	body, err := c.do(ctx, http.MethodPost, "/v1/refunds", form)
	if err != nil {
		return err
	}

	var r refund
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("parse refund response: %w", err)
	}
	if r.Status == "failed" {
		return fmt.Errorf("refund %s failed", r.ID)
	}
	return nil
}

func (c *Client) doIntent(ctx context.Context, path string, form url.Values) (*PaymentIntent, error) {
	method := http.MethodPost
	if form == nil {
		method = http.MethodGet
	}

	body, err := c.do(ctx, method, path, form)
	if err != nil {
		return nil, err
	}

	var pi paymentIntent
	if err := json.Unmarshal(body, &pi); err != nil {
		return nil, fmt.Errorf("parse payment intent response: %w", err)
	}

	return &PaymentIntent{
		ID:           pi.ID,
		Status:       pi.Status,
		Amount:       pi.Amount,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	if c.secretKey == "" {
		return nil, fmt.Errorf("payment provider secret key is not configured")
	}

	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("payment provider request %s failed: %s (%d)", path, string(body), res.StatusCode)
	}
	return body, nil
}
