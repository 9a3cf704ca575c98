package policies

import (
	"context"

	"gramstay/internal/domain/shared/money"
)

// PaymentStatus mirrors the collaborator's view of a booking's payment.
type PaymentStatus string

const (
	PaymentStatusUnknown PaymentStatus = "unknown"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PaymentsPort is the external payment collaborator. Collection and refund
// are mutations and must never be auto-retried; Status is a safe read.
type PaymentsPort interface {
	Collect(ctx context.Context, bookingID string, amount money.Money) (paymentID string, err error)
	Refund(ctx context.Context, bookingID string, amount money.Money) error
	Status(ctx context.Context, bookingID string) (PaymentStatus, error)
}
