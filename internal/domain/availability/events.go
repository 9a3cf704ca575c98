package availability

import (
	"time"

	"gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
)

type DatesBlocked struct {
	ListingID listings.ListingID
	Reference string
	From      dates.Date
	To        dates.Date
	At        time.Time
}

func (e DatesBlocked) EventName() string     { return "calendar.dates_blocked" }
func (e DatesBlocked) AggregateID() string   { return string(e.ListingID) }
func (e DatesBlocked) OccurredAt() time.Time { return e.At }

type DatesReleased struct {
	ListingID listings.ListingID
	Reference string
	From      dates.Date
	To        dates.Date
	At        time.Time
}

func (e DatesReleased) EventName() string     { return "calendar.dates_released" }
func (e DatesReleased) AggregateID() string   { return string(e.ListingID) }
func (e DatesReleased) OccurredAt() time.Time { return e.At }

type DayOverrideSet struct {
	ListingID listings.ListingID
	Date      dates.Date
	Available bool
	At        time.Time
}

func (e DayOverrideSet) EventName() string     { return "calendar.day_override_set" }
func (e DayOverrideSet) AggregateID() string   { return string(e.ListingID) }
func (e DayOverrideSet) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	ListingID listings.ListingID
	BookingID string
	Dates     []dates.Date
	At        time.Time
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return string(e.ListingID) }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }
