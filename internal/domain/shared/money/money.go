package money

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// INR is the platform currency.
const INR = "INR"

// Money keeps amounts in integer minor units (paise) to avoid floating point
// issues. API payloads use major units; conversion happens at the boundary.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Rupees builds an INR amount from major units.
func Rupees(major int64) Money {
	return Money{Amount: major * 100, Currency: INR}
}

// Major converts back to major units truncating sub-unit remainders.
func (m Money) Major() int64 {
	return m.Amount / 100
}

// MajorFloat converts to major units keeping paise precision, for JSON payloads.
func (m Money) MajorFloat() float64 {
	return float64(m.Amount) / 100
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// ScaleBps applies a basis-point rate rounding half-up to the minor unit.
// 10000 bps == 100%.
func (m Money) ScaleBps(bps int64) Money {
	const base = int64(10000)
	scaled := m.Amount * bps
	var amount int64
	if scaled >= 0 {
		amount = (scaled + base/2) / base
	} else {
		amount = -((-scaled + base/2) / base)
	}
	return Money{Amount: amount, Currency: m.Currency}
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}
