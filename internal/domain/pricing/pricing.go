package pricing

import (
	"errors"

	"gramstay/internal/domain/shared/dates"
	"gramstay/internal/domain/shared/money"
)

var (
	ErrInvalidRange  = errors.New("pricing: check-out must be after check-in")
	ErrInvalidRate   = errors.New("pricing: nightly rate must be positive")
	ErrInvalidPolicy = errors.New("pricing: fee rates out of range")
)

// FeePolicy carries the platform's percentage deductions in basis points.
// The rates are configuration, not business law; defaults are 5% and 2%.
type FeePolicy struct {
	PlatformFeeBps  int64
	CommunityFeeBps int64
}

func DefaultPolicy() FeePolicy {
	return FeePolicy{PlatformFeeBps: 500, CommunityFeeBps: 200}
}

func (p FeePolicy) Validate() error {
	if p.PlatformFeeBps < 0 || p.CommunityFeeBps < 0 {
		return ErrInvalidPolicy
	}
	if p.PlatformFeeBps+p.CommunityFeeBps >= 10000 {
		return ErrInvalidPolicy
	}
	return nil
}

// Breakdown is a deterministic quote for a stay.
type Breakdown struct {
	Nights                int
	NightlyRate           money.Money
	Base                  money.Money
	PlatformFee           money.Money
	CommunityContribution money.Money
	Total                 money.Money
	HostEarnings          money.Money
}

// Quote prices a stay. Each fee component is rounded half-up independently
// and the total is the literal sum of the rounded components, so
// base + fee + contribution == total holds exactly even when
// base * (1 + rates) would not.
func (p FeePolicy) Quote(nightlyRate money.Money, r dates.Range) (Breakdown, error) {
	if err := p.Validate(); err != nil {
		return Breakdown{}, err
	}
	if nightlyRate.Amount <= 0 {
		return Breakdown{}, ErrInvalidRate
	}
	if err := r.Validate(); err != nil {
		return Breakdown{}, ErrInvalidRange
	}

	nights := r.Nights()
	base := nightlyRate.Multiply(int64(nights))
	platformFee := base.ScaleBps(p.PlatformFeeBps)
	community := base.ScaleBps(p.CommunityFeeBps)

	total, err := base.Add(platformFee)
	if err != nil {
		return Breakdown{}, err
	}
	total, err = total.Add(community)
	if err != nil {
		return Breakdown{}, err
	}
	hostEarnings, err := base.Sub(platformFee)
	if err != nil {
		return Breakdown{}, err
	}
	hostEarnings, err = hostEarnings.Sub(community)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Nights:                nights,
		NightlyRate:           nightlyRate,
		Base:                  base,
		PlatformFee:           platformFee,
		CommunityContribution: community,
		Total:                 total,
		HostEarnings:          hostEarnings,
	}, nil
}
