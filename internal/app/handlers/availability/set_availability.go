package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/dto"
	"gramstay/internal/app/outbox"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
	domainuser "gramstay/internal/domain/user"
)

var ErrNoDates = errors.New("availability: no dates to update")

const setAvailabilityKey = "availability.set"

type SetAvailabilityCommand struct {
	Session   *domainauth.Session
	ListingID string
	Days      map[dates.Date]bool
}

func (c SetAvailabilityCommand) Key() string { return setAvailabilityKey }

// SetAvailabilityHandler applies the host's manual open/closed overrides.
// Dates covered by a confirmed booking are left alone and reported back as
// conflicts; a past date fails the whole batch.
type SetAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (*dto.AvailabilityUpdate, error) {
	if len(cmd.Days) == 0 {
		return nil, ErrNoDates
	}

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

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !actorManagesListing(cmd.Session, listing) {
		// Non-owners learn nothing about the listing's calendar.
		return nil, domainlistings.ErrNotFound
	}

	calendar, err := unit.Availability().Calendar(ctx, listing.ID)
	if err != nil {
		if !errors.Is(err, domainavailability.ErrNotFound) {
			return nil, err
		}
		calendar = domainavailability.NewCalendar(listing.ID)
	}

	confirmed, _, err := unit.Bookings().List(ctx, domainbooking.ListParams{
		ListingID: listing.ID,
		Status:    domainbooking.StatusConfirmed,
	})
	if err != nil {
		return nil, err
	}

	now := nowOrDefault(h.Now)
	today := dates.FromTime(now)
	applied := make(map[string]bool, len(cmd.Days))
	var conflicts []string

	for _, d := range sortedDates(cmd.Days) {
		if bookedOn(confirmed, d) {
			conflicts = append(conflicts, d.String())
			continue
		}
		if err := calendar.SetDay(d, cmd.Days[d], today, now); err != nil {
			return nil, err
		}
		applied[d.String()] = cmd.Days[d]
	}

	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}
	pending := calendar.PendingEvents()
	calendar.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, encoderOrDefault(h.Encoder), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &dto.AvailabilityUpdate{
		ListingID:    cmd.ListingID,
		Availability: applied,
		Conflicts:    conflicts,
	}, nil
}

func actorManagesListing(session *domainauth.Session, l *domainlistings.Listing) bool {
	if session == nil {
		return false
	}
	if session.HasRole(domainuser.RoleAdmin) {
		return true
	}
	return session.HasRole(domainuser.RoleHost) && string(session.UserID) == string(l.Host)
}

func bookedOn(bookings []*domainbooking.Booking, d dates.Date) bool {
	for _, b := range bookings {
		if b.Range.ContainsDate(d) {
			return true
		}
	}
	return false
}

func sortedDates(days map[dates.Date]bool) []dates.Date {
	out := make([]dates.Date, 0, len(days))
	for d := range days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[SetAvailabilityCommand, *dto.AvailabilityUpdate] = (*SetAvailabilityHandler)(nil)
