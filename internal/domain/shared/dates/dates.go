package dates

import (
	"errors"
	"time"
)

var (
	ErrInvalidDate  = errors.New("dates: invalid calendar date")
	ErrInvalidRange = errors.New("dates: check-out must be after check-in")
)

// Layout is the wire format for calendar dates. No time component, no zone.
const Layout = "2006-01-02"

// Date is a calendar day. All comparisons are whole-day comparisons, so a
// booking made from any timezone resolves to the same nights.
type Date struct {
	t time.Time
}

// New builds a Date from year, month and day.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates an instant to its UTC calendar day.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return New(u.Year(), u.Month(), u.Day())
}

// Parse reads a date in the YYYY-MM-DD wire format.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return FromTime(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) After(other Date) bool { return d.t.After(other.t) }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil counts whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / (24 * time.Hour))
}

// Time exposes the underlying midnight-UTC instant for storage layers.
func (d Date) Time() time.Time { return d.t }

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidDate
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Range is a half-open stay interval [CheckIn, CheckOut).
type Range struct {
	CheckIn  Date
	CheckOut Date
}

// NewRange validates that check-out falls strictly after check-in.
func NewRange(checkIn, checkOut Date) (Range, error) {
	r := Range{CheckIn: checkIn, CheckOut: checkOut}
	if err := r.Validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

func (r Range) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !r.CheckOut.After(r.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights counts billable nights; the check-out day is not one of them.
func (r Range) Nights() int {
	return r.CheckIn.DaysUntil(r.CheckOut)
}

// Days enumerates every night of the stay, check-out day excluded.
func (r Range) Days() []Date {
	if r.Validate() != nil {
		return nil
	}
	out := make([]Date, 0, r.Nights())
	for d := r.CheckIn; d.Before(r.CheckOut); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

func (r Range) Overlaps(other Range) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

func (r Range) ContainsDate(d Date) bool {
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}
