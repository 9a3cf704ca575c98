package booking

import (
	"context"
	"errors"
	"time"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/outbox"
	"gramstay/internal/app/policies"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainuser "gramstay/internal/domain/user"
)

var ErrNotBookingParty = errors.New("booking: not a party to this booking")

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	Session   *domainauth.Session
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CancelBookingHandler cancels a booking and releases its nights. The
// tourist path enforces the cancellation window; host/admin may cancel at
// any time but must give a reason. Refunds go to the payments collaborator.
type CancelBookingHandler struct {
	UoWFactory         uow.UoWFactory
	Payments           policies.PaymentsPort
	CancellationWindow time.Duration
	Outbox             outbox.Outbox
	Encoder            outbox.EventEncoder
	Notifier           policies.NotifierPort
	Now                func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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
	wasConfirmed := bk.Status == domainbooking.StatusConfirmed
	wasPaid := bk.PaymentStatus == domainbooking.PaymentPaid

	switch {
	case cmd.Session != nil && string(cmd.Session.UserID) == bk.TouristID && cmd.Session.HasRole(domainuser.RoleTourist):
		if err := bk.CancelByTourist(cmd.Reason, h.window(), now); err != nil {
			return nil, err
		}
	case actorManagesBooking(cmd.Session, bk):
		if err := bk.CancelByStaff(cmd.Reason, now); err != nil {
			return nil, err
		}
	default:
		return nil, ErrNotBookingParty
	}

	if wasPaid && h.Payments != nil {
		// Mutation on the collaborator: attempted once, never auto-retried,
		// and before any write so a failed refund cancels nothing.
		if err := h.Payments.Refund(ctx, string(bk.ID), bk.Price.Total); err != nil {
			return nil, err
		}
	}

	sources := []eventSource{bk}
	var cal *domainavailability.Calendar
	if wasConfirmed {
		cal, err = unit.Availability().Calendar(ctx, bk.ListingID)
		if err != nil {
			return nil, err
		}
		cal.Release(bk.Range, string(bk.ID), now)
		if err := unit.Availability().Save(ctx, cal); err != nil {
			return nil, err
		}
		sources = append(sources, cal)
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		if wasConfirmed {
			// Put the hold back so a partial failure leaves no freed nights
			// behind on stores without transactions.
			_ = cal.Reserve(bk.Range, string(bk.ID), now)
			_ = unit.Availability().Save(ctx, cal)
		}
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

	if h.Notifier != nil {
		target := bk.HostID
		if cmd.Session != nil && string(cmd.Session.UserID) == bk.HostID {
			target = bk.TouristID
		}
		_ = h.Notifier.Notify(ctx, target, "Booking cancelled",
			"Booking "+bk.Reference+" has been cancelled.")
	}
	return &CancelBookingResult{BookingID: string(bk.ID), Status: string(bk.Status)}, nil
}

func (h *CancelBookingHandler) window() time.Duration {
	if h.CancellationWindow > 0 {
		return h.CancellationWindow
	}
	return 24 * time.Hour
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
