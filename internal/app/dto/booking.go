package dto

import (
	"time"

	domainbooking "gramstay/internal/domain/booking"
)

type BookingView struct {
	BookingID             string    `json:"booking_id"`
	BookingReference      string    `json:"booking_reference"`
	ListingID             string    `json:"listing_id"`
	TouristID             string    `json:"tourist_id"`
	HostID                string    `json:"host_id"`
	CheckIn               string    `json:"check_in"`
	CheckOut              string    `json:"check_out"`
	Guests                int       `json:"guests"`
	SpecialRequests       string    `json:"special_requests,omitempty"`
	Nights                int       `json:"nights"`
	BaseAmount            float64   `json:"base_amount"`
	PlatformFee           float64   `json:"platform_fee"`
	CommunityContribution float64   `json:"community_contribution"`
	TotalAmount           float64   `json:"total_amount"`
	HostEarnings          float64   `json:"host_earnings"`
	Status                string    `json:"status"`
	PaymentStatus         string    `json:"payment_status"`
	CancelReason          string    `json:"cancel_reason,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

type BookingPage struct {
	Items      []BookingView `json:"items"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalCount int           `json:"total_count"`
	TotalPages int           `json:"total_pages"`
}

func MapBookingView(b *domainbooking.Booking) BookingView {
	if b == nil {
		return BookingView{}
	}
	return BookingView{
		BookingID:             string(b.ID),
		BookingReference:      b.Reference,
		ListingID:             string(b.ListingID),
		TouristID:             b.TouristID,
		HostID:                b.HostID,
		CheckIn:               b.Range.CheckIn.String(),
		CheckOut:              b.Range.CheckOut.String(),
		Guests:                b.Guests,
		SpecialRequests:       b.SpecialRequests,
		Nights:                b.Price.Nights,
		BaseAmount:            b.Price.Base.MajorFloat(),
		PlatformFee:           b.Price.PlatformFee.MajorFloat(),
		CommunityContribution: b.Price.CommunityContribution.MajorFloat(),
		TotalAmount:           b.Price.Total.MajorFloat(),
		HostEarnings:          b.Price.HostEarnings.MajorFloat(),
		Status:                string(b.Status),
		PaymentStatus:         string(b.PaymentStatus),
		CancelReason:          b.CancelReason,
		CreatedAt:             b.CreatedAt,
	}
}

func MapBookingPage(items []*domainbooking.Booking, page, limit, total int) BookingPage {
	out := BookingPage{
		Items:      make([]BookingView, 0, len(items)),
		Page:       page,
		Limit:      limit,
		TotalCount: total,
	}
	if limit > 0 {
		out.TotalPages = (total + limit - 1) / limit
	}
	for _, b := range items {
		out.Items = append(out.Items, MapBookingView(b))
	}
	return out
}
