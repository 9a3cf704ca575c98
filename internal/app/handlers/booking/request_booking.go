package booking

import (
	"context"
	"errors"
	"time"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/middleware"
	"gramstay/internal/app/outbox"
	"gramstay/internal/app/policies"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	domainpricing "gramstay/internal/domain/pricing"
	"gramstay/internal/domain/shared/dates"
	domainuser "gramstay/internal/domain/user"
)

var (
	ErrUnauthorized         = errors.New("booking: only tourists can request bookings")
	ErrGuestCountOutOfRange = errors.New("booking: guest count out of range")
	ErrCheckInPast          = errors.New("booking: check-in date is in the past")
	ErrListingNotBookable   = errors.New("booking: listing is not open for bookings")
	ErrUnitOfWorkRequired   = errors.New("booking: unit of work required")
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	CommandID       string
	Session         *domainauth.Session
	ListingID       string
	CheckIn         dates.Date
	CheckOut        dates.Date
	Guests          int
	SpecialRequests string
	IdempotencyKeyV string
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

func (c RequestBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RequestBookingCommand) ResultPrototype() any { return &RequestBookingResult{} }

type RequestBookingResult struct {
	BookingID        string  `json:"booking_id"`
	BookingReference string  `json:"booking_reference"`
	Status           string  `json:"status"`
	TotalAmount      float64 `json:"total_amount"`
}

// RequestBookingHandler validates a stay request against the listing and its
// calendar, prices it, and persists the booking. When auto-approval is on the
// booking is confirmed and its nights taken in the same unit of work.
type RequestBookingHandler struct {
	UoWFactory  uow.UoWFactory
	Fees        domainpricing.FeePolicy
	AutoApprove bool
	Payments    policies.PaymentsPort
	Notifier    policies.NotifierPort
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Now         func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
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

	now := nowOrDefault(h.Now)
	// Checks run in a fixed order and stop at the first failure, so the
	// caller always sees the most fundamental problem first.
	if cmd.Session == nil || !cmd.Session.HasRole(domainuser.RoleTourist) {
		return nil, ErrUnauthorized
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if listing.State != domainlistings.ListingActive {
		return nil, ErrListingNotBookable
	}
	if cmd.Guests < 1 || cmd.Guests > listing.MaxGuests {
		return nil, ErrGuestCountOutOfRange
	}

	stay, err := dates.NewRange(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	if stay.CheckIn.Before(dates.FromTime(now)) {
		return nil, ErrCheckInPast
	}

	calendar, err := unit.Availability().Calendar(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if blocked := calendar.UnavailableDates(stay); len(blocked) > 0 {
		return nil, &domainavailability.UnavailableError{Dates: blocked}
	}

	quote, err := h.Fees.Quote(listing.NightlyRate, stay)
	if err != nil {
		return nil, err
	}

	reference, err := domainbooking.NewReference()
	if err != nil {
		return nil, err
	}
	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:              domainbooking.BookingID(cmd.CommandID),
		Reference:       reference,
		ListingID:       listing.ID,
		TouristID:       string(cmd.Session.UserID),
		HostID:          string(listing.Host),
		Range:           stay,
		Guests:          cmd.Guests,
		SpecialRequests: cmd.SpecialRequests,
		Price:           quote,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	if h.AutoApprove {
		if err := bk.Confirm(now); err != nil {
			return nil, err
		}
		if err := reserveStay(ctx, unit, calendar, bk, now); err != nil {
			return nil, err
		}
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		if h.AutoApprove {
			// Compensate the calendar hold so a partial failure leaves no
			// phantom block behind on stores without transactions.
			calendar.Release(bk.Range, string(bk.ID), now)
			_ = unit.Availability().Save(ctx, calendar)
		}
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

	if h.Payments != nil {
		// Kicks off collection with the collaborator; the webhook reports
		// the outcome. Sent once, never auto-retried.
		_, _ = h.Payments.Collect(ctx, string(bk.ID), bk.Price.Total)
	}
	if h.Notifier != nil {
		_ = h.Notifier.Notify(ctx, bk.HostID, "New booking request",
			"Booking "+bk.Reference+" is waiting for your approval.")
	}

	return &RequestBookingResult{
		BookingID:        string(bk.ID),
		BookingReference: bk.Reference,
		Status:           string(bk.Status),
		TotalAmount:      bk.Price.Total.MajorFloat(),
	}, nil
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*RequestBookingCommand)(nil)
