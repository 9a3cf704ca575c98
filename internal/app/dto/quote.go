package dto

import "gramstay/internal/domain/pricing"

type Quote struct {
	Nights                int     `json:"nights"`
	PricePerNight         float64 `json:"price_per_night"`
	BaseAmount            float64 `json:"base_amount"`
	PlatformFee           float64 `json:"platform_fee"`
	CommunityContribution float64 `json:"community_contribution"`
	TotalAmount           float64 `json:"total_amount"`
	HostEarnings          float64 `json:"host_earnings"`
}

func MapQuote(b pricing.Breakdown) Quote {
	return Quote{
		Nights:                b.Nights,
		PricePerNight:         b.NightlyRate.MajorFloat(),
		BaseAmount:            b.Base.MajorFloat(),
		PlatformFee:           b.PlatformFee.MajorFloat(),
		CommunityContribution: b.CommunityContribution.MajorFloat(),
		TotalAmount:           b.Total.MajorFloat(),
		HostEarnings:          b.HostEarnings.MajorFloat(),
	}
}
