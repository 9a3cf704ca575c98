package booking

import (
	"context"
	"errors"
	"time"

	"gramstay/internal/app/outbox"
	"gramstay/internal/app/uow"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	"gramstay/internal/domain/shared/events"
)

// beginUnit joins the unit of work installed by the transaction middleware,
// or starts (and then owns) its own when dispatched without one.
func beginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, false, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	return unit, uow.ContextWithUnitOfWork(execCtx, unit), true, nil
}

// reserveStay blocks the booking's nights and persists the calendar. A lost
// optimistic-save race reads as "dates no longer available" to the caller,
// which is the expected recoverable outcome, not a fault.
func reserveStay(ctx context.Context, unit uow.UnitOfWork, calendar *domainavailability.Calendar, bk *domainbooking.Booking, now time.Time) error {
	if err := calendar.Reserve(bk.Range, string(bk.ID), now); err != nil {
		return err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		if errors.Is(err, domainavailability.ErrConcurrentUpdate) {
			return domainavailability.ErrDatesUnavailable
		}
		return err
	}
	return nil
}

type eventSource interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// drainEvents moves pending aggregate events into the outbox.
func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, sources ...eventSource) error {
	for _, src := range sources {
		if src == nil {
			continue
		}
		pending := src.PendingEvents()
		src.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, box, encoder, pending); err != nil {
			return err
		}
	}
	return nil
}
