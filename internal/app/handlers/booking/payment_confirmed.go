package booking

import (
	"context"
	"time"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/outbox"
	"gramstay/internal/app/uow"
	domainbooking "gramstay/internal/domain/booking"
)

const paymentConfirmedKey = "booking.payment_confirmed"

// PaymentConfirmedCommand arrives from the payments collaborator, not from a
// user, so it carries no session.
type PaymentConfirmedCommand struct {
	BookingID string
}

func (c PaymentConfirmedCommand) Key() string { return paymentConfirmedKey }

type PaymentConfirmedResult struct {
	BookingID     string `json:"booking_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// PaymentConfirmedHandler records payment on a booking. A paid pending
// booking is confirmed in the same unit of work, which is when its nights
// are actually taken off the calendar.
type PaymentConfirmedHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *PaymentConfirmedHandler) Handle(ctx context.Context, cmd PaymentConfirmedCommand) (*PaymentConfirmedResult, error) {
	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}

	now := nowOrDefault(h.Now)
	if err := bk.MarkPaid(now); err != nil {
		return nil, err
	}

	sources := []eventSource{bk}
	if bk.Status == domainbooking.StatusPending {
		if err := bk.Confirm(now); err != nil {
			return nil, err
		}
		calendar, err := unit.Availability().Calendar(ctx, bk.ListingID)
		if err != nil {
			return nil, err
		}
		if err := reserveStay(ctx, unit, calendar, bk, now); err != nil {
			return nil, err
		}
		sources = append(sources, calendar)
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), sources...); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &PaymentConfirmedResult{
		BookingID:     string(bk.ID),
		Status:        string(bk.Status),
		PaymentStatus: string(bk.PaymentStatus),
	}, nil
}

var _ commands.Handler[PaymentConfirmedCommand, *PaymentConfirmedResult] = (*PaymentConfirmedHandler)(nil)
