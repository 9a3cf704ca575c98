package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"gramstay/internal/domain/listings"
	"gramstay/internal/domain/pricing"
	"gramstay/internal/domain/shared/dates"
	"gramstay/internal/domain/shared/events"
)

var (
	ErrInvalidGuests            = errors.New("booking: guests count must be positive")
	ErrTouristRequired          = errors.New("booking: tourist id required")
	ErrInvalidState             = errors.New("booking: invalid state transition")
	ErrCancellationWindowPassed = errors.New("booking: cancellation window has passed")
	ErrStayNotFinished          = errors.New("booking: stay has not finished yet")
	ErrReasonRequired           = errors.New("booking: cancellation reason required")
	ErrNotFound                 = errors.New("booking: not found")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

type Booking struct {
	ID              BookingID
	Reference       string
	ListingID       listings.ListingID
	TouristID       string
	HostID          string
	Range           dates.Range
	Guests          int
	SpecialRequests string
	Price           pricing.Breakdown
	Status          Status
	PaymentStatus   PaymentStatus
	CancelReason    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

// ListParams filter booking lists; zero values mean "no filter".
type ListParams struct {
	TouristID string
	HostID    string
	ListingID listings.ListingID
	Status    Status
	Limit     int
	Offset    int
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	List(ctx context.Context, params ListParams) ([]*Booking, int, error)
}

type CreateParams struct {
	ID              BookingID
	Reference       string
	ListingID       listings.ListingID
	TouristID       string
	HostID          string
	Range           dates.Range
	Guests          int
	SpecialRequests string
	Price           pricing.Breakdown
	CreatedAt       time.Time
}

// NewBooking creates a pending booking. Confirmation (and the calendar hold
// that goes with it) is a separate transition so that the availability
// re-check happens at the moment dates are actually taken.
func NewBooking(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if strings.TrimSpace(params.TouristID) == "" {
		return nil, ErrTouristRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:              params.ID,
		Reference:       params.Reference,
		ListingID:       params.ListingID,
		TouristID:       params.TouristID,
		HostID:          params.HostID,
		Range:           params.Range,
		Guests:          params.Guests,
		SpecialRequests: strings.TrimSpace(params.SpecialRequests),
		Price:           params.Price,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Record(BookingRequested{
		BookingID:   b.ID,
		Reference:   b.Reference,
		ListingID:   b.ListingID,
		TouristID:   b.TouristID,
		Range:       b.Range,
		GuestsCount: b.Guests,
		Total:       b.Price.Total,
		At:          now,
	})
	return b, nil
}

// Confirm moves a pending booking to confirmed. The caller is responsible for
// reserving the calendar dates in the same unit of work.
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, Range: b.Range, Total: b.Price.Total, At: b.UpdatedAt})
	return nil
}

// CancelByTourist allows the guest to cancel up to `window` before check-in.
func (b *Booking) CancelByTourist(reason string, window time.Duration, now time.Time) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	cutoff := b.Range.CheckIn.Time().Add(-window)
	if !now.UTC().Before(cutoff) {
		return ErrCancellationWindowPassed
	}
	b.cancel(reason, now)
	return nil
}

// CancelByStaff lets the host or an admin cancel at any time, reason mandatory.
func (b *Booking) CancelByStaff(reason string, now time.Time) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	b.cancel(reason, now)
	return nil
}

// Complete is a host action permitted only after the stay has ended.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if !now.UTC().After(b.Range.CheckOut.Time()) {
		return ErrStayNotFinished
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, ListingID: b.ListingID, HostEarnings: b.Price.HostEarnings, At: b.UpdatedAt})
	return nil
}

// MarkPaid records payment confirmation from the external collaborator.
func (b *Booking) MarkPaid(now time.Time) error {
	if b.Status.Terminal() {
		return ErrInvalidState
	}
	b.PaymentStatus = PaymentPaid
	b.UpdatedAt = now.UTC()
	b.Record(BookingPaid{BookingID: b.ID, Total: b.Price.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) cancel(reason string, now time.Time) {
	released := b.Status == StatusConfirmed
	b.Status = StatusCancelled
	b.CancelReason = strings.TrimSpace(reason)
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{
		BookingID:     b.ID,
		ListingID:     b.ListingID,
		Range:         b.Range,
		Reason:        b.CancelReason,
		DatesReleased: released,
		RefundDue:     b.PaymentStatus == PaymentPaid,
		At:            b.UpdatedAt,
	})
}
