package booking

import (
	"time"

	"gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
	"gramstay/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID   BookingID
	Reference   string
	ListingID   listings.ListingID
	TouristID   string
	Range       dates.Range
	GuestsCount int
	Total       money.Money
	At          time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	ListingID listings.ListingID
	Range     dates.Range
	Total     money.Money
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID     BookingID
	ListingID     listings.ListingID
	Range         dates.Range
	Reason        string
	DatesReleased bool
	RefundDue     bool
	At            time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID    BookingID
	ListingID    listings.ListingID
	HostEarnings money.Money
	At           time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type BookingPaid struct {
	BookingID BookingID
	Total     money.Money
	At        time.Time
}

func (e BookingPaid) EventName() string     { return "booking.paid" }
func (e BookingPaid) AggregateID() string   { return string(e.BookingID) }
func (e BookingPaid) OccurredAt() time.Time { return e.At }
