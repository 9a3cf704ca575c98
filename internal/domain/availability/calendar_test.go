package availability

import (
	"errors"
	"testing"
	"time"

	"gramstay/internal/domain/shared/dates"
)

var fixedNow = time.Date(2026, time.June, 1, 10, 0, 0, 0, time.UTC)

func mustRange(t *testing.T, from, to dates.Date) dates.Range {
	t.Helper()
	r, err := dates.NewRange(from, to)
	if err != nil {
		t.Fatalf("building range: %v", err)
	}
	return r
}

func TestCalendarDefaults(t *testing.T) {
	t.Parallel()

	cal := NewCalendar("listing-1")
	d := dates.New(2026, time.June, 10)
	if !cal.Available(d) {
		t.Fatalf("unknown dates must read as available")
	}

	cal.Days[d] = true
	if !cal.Available(d) {
		t.Fatalf("explicit true override must read as available")
	}
}

func TestReserveAndRelease(t *testing.T) {
	t.Parallel()

	cal := NewCalendar("listing-1")
	stay := mustRange(t, dates.New(2026, time.June, 10), dates.New(2026, time.June, 13))

	if err := cal.Reserve(stay, "bk-1", fixedNow); err != nil {
		t.Fatalf("expected reserve to succeed, got %v", err)
	}
	for _, d := range stay.Days() {
		if cal.Available(d) {
			t.Fatalf("night %s should be blocked after reserve", d)
		}
	}
	if !cal.Available(stay.CheckOut) {
		t.Fatalf("checkout day must stay open")
	}

	cal.Release(stay, "bk-1", fixedNow)
	for _, d := range stay.Days() {
		if cal.Available(d) {
			continue
		}
		t.Fatalf("night %s should be open again after release", d)
	}
	if len(cal.Days) != 0 {
		t.Fatalf("release should drop overrides, %d remain", len(cal.Days))
	}
}

func TestReserveConflict(t *testing.T) {
	t.Parallel()

	cal := NewCalendar("listing-1")
	first := mustRange(t, dates.New(2026, time.June, 10), dates.New(2026, time.June, 13))
	if err := cal.Reserve(first, "bk-1", fixedNow); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}

	second := mustRange(t, dates.New(2026, time.June, 12), dates.New(2026, time.June, 15))
	err := cal.Reserve(second, "bk-2", fixedNow)
	if err == nil {
		t.Fatalf("overlapping reserve must fail")
	}
	if !errors.Is(err, ErrDatesUnavailable) {
		t.Fatalf("conflict must match ErrDatesUnavailable, got %v", err)
	}

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected *UnavailableError, got %T", err)
	}
	if len(unavailable.Dates) != 1 || !unavailable.Dates[0].Equal(dates.New(2026, time.June, 12)) {
		t.Fatalf("conflict should name exactly the shared night, got %v", unavailable.Dates)
	}

	// The failed attempt must leave the calendar untouched.
	if !cal.Available(dates.New(2026, time.June, 13)) || !cal.Available(dates.New(2026, time.June, 14)) {
		t.Fatalf("failed reserve must not block any night")
	}
}

func TestSetDay(t *testing.T) {
	t.Parallel()

	today := dates.New(2026, time.June, 5)

	t.Run("past dates are immutable", func(t *testing.T) {
		cal := NewCalendar("listing-1")
		if err := cal.SetDay(today.AddDays(-1), false, today, fixedNow); !errors.Is(err, ErrDateInPast) {
			t.Fatalf("expected ErrDateInPast, got %v", err)
		}
	})

	t.Run("today is editable", func(t *testing.T) {
		cal := NewCalendar("listing-1")
		if err := cal.SetDay(today, false, today, fixedNow); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cal.Available(today) {
			t.Fatalf("today should be blocked")
		}
	})

	t.Run("reopening drops the override", func(t *testing.T) {
		cal := NewCalendar("listing-1")
		d := today.AddDays(3)
		if err := cal.SetDay(d, false, today, fixedNow); err != nil {
			t.Fatalf("block: %v", err)
		}
		if err := cal.SetDay(d, true, today, fixedNow); err != nil {
			t.Fatalf("unblock: %v", err)
		}
		if _, ok := cal.Days[d]; ok {
			t.Fatalf("reopened date should have no stored override")
		}
	})
}

func TestMonthView(t *testing.T) {
	t.Parallel()

	cal := NewCalendar("listing-1")
	today := dates.New(2026, time.June, 15)
	blocked := dates.New(2026, time.June, 20)
	if err := cal.SetDay(blocked, false, today, fixedNow); err != nil {
		t.Fatalf("block: %v", err)
	}

	view := cal.Month(2026, time.June, today)
	if len(view) != 30 {
		t.Fatalf("June should have 30 days, got %d", len(view))
	}
	for _, day := range view {
		switch {
		case day.Date.Equal(blocked):
			if day.Available {
				t.Fatalf("%s should be unavailable", day.Date)
			}
		case !day.Available:
			t.Fatalf("%s should default to available", day.Date)
		}
		wantEditable := !day.Date.Before(today)
		if day.Editable != wantEditable {
			t.Fatalf("%s editable = %v, want %v", day.Date, day.Editable, wantEditable)
		}
	}
}
