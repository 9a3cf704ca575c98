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
	domainbooking "gramstay/internal/domain/booking"
	domainuser "gramstay/internal/domain/user"
)

var ErrNotBookingHost = errors.New("booking: only the listing host or an admin can do this")

const approveBookingKey = "booking.approve"

type ApproveBookingCommand struct {
	Session   *domainauth.Session
	BookingID string
}

func (c ApproveBookingCommand) Key() string { return approveBookingKey }

type ApproveBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// ApproveBookingHandler confirms a pending booking. Availability is
// re-checked at this moment; the dates may have gone since the request.
type ApproveBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Notifier   policies.NotifierPort
	Now        func() time.Time
}

func (h *ApproveBookingHandler) Handle(ctx context.Context, cmd ApproveBookingCommand) (*ApproveBookingResult, error) {
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
	if !actorManagesBooking(cmd.Session, bk) {
		return nil, ErrNotBookingHost
	}

	now := nowOrDefault(h.Now)
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

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		calendar.Release(bk.Range, string(bk.ID), now)
		_ = unit.Availability().Save(ctx, calendar)
		return nil, err
	}

	if err := drainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), bk, calendar); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Notifier != nil {
		_ = h.Notifier.Notify(ctx, bk.TouristID, "Booking confirmed",
			"Your stay "+bk.Reference+" has been confirmed by the host.")
	}
	return &ApproveBookingResult{BookingID: string(bk.ID), Status: string(bk.Status)}, nil
}

func actorManagesBooking(session *domainauth.Session, bk *domainbooking.Booking) bool {
	if session == nil {
		return false
	}
	if session.HasRole(domainuser.RoleAdmin) {
		return true
	}
	return session.HasRole(domainuser.RoleHost) && string(session.UserID) == bk.HostID
}

func nowOrDefault(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[ApproveBookingCommand, *ApproveBookingResult] = (*ApproveBookingHandler)(nil)
