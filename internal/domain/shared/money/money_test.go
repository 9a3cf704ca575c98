package money

import (
	"errors"
	"testing"
)

func TestScaleBps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{"five percent of round amount", 600000, 500, 30000},
		{"two percent of round amount", 600000, 200, 12000},
		{"rounds half up", 999, 500, 50},        // 49.95 paise
		{"rounds down below half", 101, 200, 2}, // 2.02 paise
		{"exact half rounds up", 100, 50, 1},    // 0.5 paise
		{"zero rate", 600000, 0, 0},
		{"negative amount mirrors rounding", -999, 500, -50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Must(tc.amount, INR).ScaleBps(tc.bps)
			if got.Amount != tc.want {
				t.Fatalf("ScaleBps(%d bps) on %d = %d, want %d", tc.bps, tc.amount, got.Amount, tc.want)
			}
			if got.Currency != INR {
				t.Fatalf("currency lost in scaling: %q", got.Currency)
			}
		})
	}
}

func TestMajorUnits(t *testing.T) {
	t.Parallel()

	m := Rupees(2000)
	if m.Amount != 200000 {
		t.Fatalf("2000 rupees should be 200000 paise, got %d", m.Amount)
	}
	if m.Major() != 2000 {
		t.Fatalf("Major() = %d, want 2000", m.Major())
	}
	if got := Must(642050, INR).MajorFloat(); got != 6420.5 {
		t.Fatalf("MajorFloat() = %v, want 6420.5", got)
	}
}

func TestArithmetic(t *testing.T) {
	t.Parallel()

	t.Run("add and sub keep currency", func(t *testing.T) {
		sum, err := Rupees(100).Add(Rupees(25))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sum.Amount != 12500 {
			t.Fatalf("sum = %d, want 12500", sum.Amount)
		}
		diff, err := sum.Sub(Rupees(100))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if diff.Amount != 2500 {
			t.Fatalf("diff = %d, want 2500", diff.Amount)
		}
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		if _, err := Rupees(10).Add(Must(1000, "USD")); !errors.Is(err, ErrCurrencyMismatch) {
			t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
		}
	})

	t.Run("rejects invalid currency codes", func(t *testing.T) {
		if _, err := New(100, "RUPEE"); !errors.Is(err, ErrInvalidCurrency) {
			t.Fatalf("expected ErrInvalidCurrency, got %v", err)
		}
	})
}
