package dates

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid wire format", func(t *testing.T) {
		d, err := Parse("2026-10-05")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d.Year() != 2026 || d.Month() != time.October || d.Day() != 5 {
			t.Fatalf("parsed wrong date: %s", d)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, raw := range []string{"", "2026-13-01", "05-10-2026", "2026/10/05", "2026-10-05T00:00:00Z"} {
			if _, err := Parse(raw); !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("expected ErrInvalidDate for %q, got %v", raw, err)
			}
		}
	})

	t.Run("round trips through String", func(t *testing.T) {
		d := New(2026, time.February, 28)
		back, err := Parse(d.String())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !back.Equal(d) {
			t.Fatalf("round trip changed the date: %s != %s", back, d)
		}
	})
}

func TestRange(t *testing.T) {
	t.Parallel()

	t.Run("checkout must be strictly after checkin", func(t *testing.T) {
		d := New(2026, time.June, 10)
		if _, err := NewRange(d, d); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange for zero-night stay, got %v", err)
		}
		if _, err := NewRange(d, d.AddDays(-1)); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange for reversed range, got %v", err)
		}
	})

	t.Run("nights exclude checkout day", func(t *testing.T) {
		r, err := NewRange(New(2026, time.June, 10), New(2026, time.June, 13))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if r.Nights() != 3 {
			t.Fatalf("expected 3 nights, got %d", r.Nights())
		}
		days := r.Days()
		if len(days) != 3 {
			t.Fatalf("expected 3 days, got %d", len(days))
		}
		if !days[len(days)-1].Equal(New(2026, time.June, 12)) {
			t.Fatalf("last night should be the 12th, got %s", days[len(days)-1])
		}
		if r.ContainsDate(r.CheckOut) {
			t.Fatalf("range must not contain the checkout day")
		}
	})

	t.Run("overlap is half open", func(t *testing.T) {
		a, _ := NewRange(New(2026, time.June, 10), New(2026, time.June, 13))
		backToBack, _ := NewRange(New(2026, time.June, 13), New(2026, time.June, 15))
		if a.Overlaps(backToBack) {
			t.Fatalf("back-to-back stays must not overlap")
		}
		overlapping, _ := NewRange(New(2026, time.June, 12), New(2026, time.June, 14))
		if !a.Overlaps(overlapping) {
			t.Fatalf("stays sharing a night must overlap")
		}
	})

	t.Run("spans a month boundary", func(t *testing.T) {
		r, _ := NewRange(New(2026, time.January, 30), New(2026, time.February, 2))
		if r.Nights() != 3 {
			t.Fatalf("expected 3 nights across the boundary, got %d", r.Nights())
		}
	})
}
