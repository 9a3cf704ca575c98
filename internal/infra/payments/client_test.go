package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gramstay/internal/app/policies"
	"gramstay/internal/domain/shared/money"
)

func TestCollect(t *testing.T) {
	t.Parallel()

	t.Run("sends the amount in major units", func(t *testing.T) {
		var calls atomic.Int32
		var got collectRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.URL.Path != "/payments/collect" {
				t.Errorf("path = %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode: %v", err)
			}
			_ = json.NewEncoder(w).Encode(collectResponse{PaymentID: "pay-42"})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		paymentID, err := client.Collect(context.Background(), "bk-1", money.Rupees(6420))
		if err != nil {
			t.Fatalf("collect: %v", err)
		}
		if paymentID != "pay-42" {
			t.Fatalf("payment id = %s", paymentID)
		}
		if got.BookingID != "bk-1" || got.Amount != 6420 || got.Currency != money.INR {
			t.Fatalf("request = %+v", got)
		}
		if calls.Load() != 1 {
			t.Fatalf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("never retried on failure", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		if _, err := client.Collect(context.Background(), "bk-1", money.Rupees(100)); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
		if calls.Load() != 1 {
			t.Fatalf("calls = %d, charged operations must go out once", calls.Load())
		}
	})
}

func TestRefund(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/payments/refund" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if err := client.Refund(context.Background(), "bk-1", money.Rupees(6420)); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	t.Run("maps known states", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(statusResponse{Status: "paid"})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		status, err := client.Status(context.Background(), "bk-1")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status != policies.PaymentStatusPaid {
			t.Fatalf("status = %s, want paid", status)
		}
	})

	t.Run("retried exactly once", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(statusResponse{Status: "pending"})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		status, err := client.Status(context.Background(), "bk-1")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status != policies.PaymentStatusPending {
			t.Fatalf("status = %s, want pending", status)
		}
		if calls.Load() != 2 {
			t.Fatalf("calls = %d, want 2", calls.Load())
		}
	})

	t.Run("gives up after the retry", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		if _, err := client.Status(context.Background(), "bk-1"); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
		if calls.Load() != 2 {
			t.Fatalf("calls = %d, want 2", calls.Load())
		}
	})

	t.Run("unknown states collapse", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(statusResponse{Status: "weird"})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, time.Second)
		status, err := client.Status(context.Background(), "bk-1")
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status != policies.PaymentStatusUnknown {
			t.Fatalf("status = %s, want unknown", status)
		}
	})
}
