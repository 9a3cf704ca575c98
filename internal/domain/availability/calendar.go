package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
	"gramstay/internal/domain/shared/events"
)

var (
	ErrDateInPast       = errors.New("availability: past dates cannot be edited")
	ErrDatesUnavailable = errors.New("availability: dates unavailable")
	ErrConcurrentUpdate = errors.New("availability: concurrent calendar update")
	ErrNotFound         = errors.New("availability: calendar not found")
)

// UnavailableError reports exactly which dates of a requested range are
// blocked, so callers can surface them instead of a generic failure.
type UnavailableError struct {
	Dates []dates.Date
}

func (e *UnavailableError) Error() string {
	parts := make([]string, 0, len(e.Dates))
	for _, d := range e.Dates {
		parts = append(parts, d.String())
	}
	return fmt.Sprintf("availability: dates unavailable: %s", strings.Join(parts, ", "))
}

func (e *UnavailableError) Is(target error) bool { return target == ErrDatesUnavailable }

// Calendar tracks per-date availability for one listing. Only explicit
// overrides are stored: a date absent from Days is available. Version backs
// the optimistic save that keeps two overlapping bookings from both winning.
type Calendar struct {
	ListingID listings.ListingID
	Days      map[dates.Date]bool
	Version   int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id listings.ListingID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(id listings.ListingID) *Calendar {
	return &Calendar{ListingID: id, Days: make(map[dates.Date]bool)}
}

// Available applies the default-open rule: blocked only by an explicit false.
func (c *Calendar) Available(d dates.Date) bool {
	v, ok := c.Days[d]
	return !ok || v
}

// UnavailableDates lists the blocked nights within the range, in order.
func (c *Calendar) UnavailableDates(r dates.Range) []dates.Date {
	var out []dates.Date
	for _, d := range r.Days() {
		if !c.Available(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (c *Calendar) CanReserve(r dates.Range) bool {
	return len(c.UnavailableDates(r)) == 0
}

// Reserve blocks every night of the stay for a booking. Fails with the full
// list of conflicting dates and leaves the calendar untouched.
func (c *Calendar) Reserve(r dates.Range, bookingID string, now time.Time) error {
	if blocked := c.UnavailableDates(r); len(blocked) > 0 {
		c.Record(OverbookingPrevented{ListingID: c.ListingID, BookingID: bookingID, Dates: blocked, At: now.UTC()})
		return &UnavailableError{Dates: blocked}
	}
	c.ensureDays()
	for _, d := range r.Days() {
		c.Days[d] = false
	}
	c.Record(DatesBlocked{ListingID: c.ListingID, Reference: bookingID, From: r.CheckIn, To: r.CheckOut, At: now.UTC()})
	return nil
}

// Release restores exactly the nights of the range back to the default-open
// state. Explicit overrides are dropped rather than flipped to true; the
// observable availability is identical either way.
func (c *Calendar) Release(r dates.Range, bookingID string, now time.Time) {
	for _, d := range r.Days() {
		delete(c.Days, d)
	}
	c.Record(DatesReleased{ListingID: c.ListingID, Reference: bookingID, From: r.CheckIn, To: r.CheckOut, At: now.UTC()})
}

// SetDay records a host block/unblock for one date. Past dates are display
// only and immutable.
func (c *Calendar) SetDay(d dates.Date, available bool, today dates.Date, now time.Time) error {
	if d.Before(today) {
		return ErrDateInPast
	}
	c.ensureDays()
	if available {
		delete(c.Days, d)
	} else {
		c.Days[d] = false
	}
	c.Record(DayOverrideSet{ListingID: c.ListingID, Date: d, Available: available, At: now.UTC()})
	return nil
}

// DayStatus is one row of the effective month view.
type DayStatus struct {
	Date      dates.Date
	Available bool
	Editable  bool
}

// Month returns the effective availability for every day of the given month,
// default-available applied; days before today are flagged non-editable.
func (c *Calendar) Month(year int, month time.Month, today dates.Date) []DayStatus {
	first := dates.New(year, month, 1)
	next := dates.New(year, month+1, 1)
	out := make([]DayStatus, 0, first.DaysUntil(next))
	for d := first; d.Before(next); d = d.AddDays(1) {
		out = append(out, DayStatus{
			Date:      d,
			Available: c.Available(d),
			Editable:  !d.Before(today),
		})
	}
	return out
}

func (c *Calendar) ensureDays() {
	if c.Days == nil {
		c.Days = make(map[dates.Date]bool)
	}
}
