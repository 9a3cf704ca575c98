package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gramstay/internal/app/policies"
	"gramstay/internal/domain/shared/money"
)

var ErrUnavailable = errors.New("payments: service unavailable")

// Client talks to the payment collaborator over HTTP. Status is an
// idempotent read and is retried once on transport failure; Collect and
// Refund are charged operations and go out exactly once.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

type collectRequest struct {
	BookingID string  `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

type collectResponse struct {
	PaymentID string `json:"payment_id"`
}

func (c *Client) Collect(ctx context.Context, bookingID string, amount money.Money) (string, error) {
	body := collectRequest{BookingID: bookingID, Amount: amount.MajorFloat(), Currency: amount.Currency}
	var out collectResponse
	if err := c.post(ctx, "/payments/collect", body, &out); err != nil {
		return "", err
	}
	return out.PaymentID, nil
}

func (c *Client) Refund(ctx context.Context, bookingID string, amount money.Money) error {
	body := collectRequest{BookingID: bookingID, Amount: amount.MajorFloat(), Currency: amount.Currency}
	return c.post(ctx, "/payments/refund", body, nil)
}

type statusResponse struct {
	Status string `json:"status"`
}

func (c *Client) Status(ctx context.Context, bookingID string) (policies.PaymentStatus, error) {
	var out statusResponse
	err := c.get(ctx, "/payments/"+bookingID+"/status", &out)
	if err != nil {
		// One retry for the read path only.
		err = c.get(ctx, "/payments/"+bookingID+"/status", &out)
	}
	if err != nil {
		return policies.PaymentStatusUnknown, err
	}
	switch policies.PaymentStatus(out.Status) {
	case policies.PaymentStatusPending, policies.PaymentStatusPaid, policies.PaymentStatusFailed:
		return policies.PaymentStatus(out.Status), nil
	default:
		return policies.PaymentStatusUnknown, nil
	}
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}
	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("payments: %s: %s", res.Status, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

var _ policies.PaymentsPort = (*Client)(nil)
