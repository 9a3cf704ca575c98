package booking

import (
	"context"
	"time"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/outbox"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainbooking "gramstay/internal/domain/booking"
)

const completeBookingKey = "booking.complete"

type CompleteBookingCommand struct {
	Session   *domainauth.Session
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

type CompleteBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// CompleteBookingHandler closes out a confirmed stay once checkout has
// passed. Completion frees the host's earnings downstream; the calendar is
// untouched because the nights are already in the past.
type CompleteBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*CompleteBookingResult, error) {
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

	if err := bk.Complete(nowOrDefault(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), bk); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &CompleteBookingResult{BookingID: string(bk.ID), Status: string(bk.Status)}, nil
}

var _ commands.Handler[CompleteBookingCommand, *CompleteBookingResult] = (*CompleteBookingHandler)(nil)
