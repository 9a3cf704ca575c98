package dto

import (
	"time"

	"gramstay/internal/domain/listings"
)

type ListingLocation struct {
	Village  string  `json:"village"`
	District string  `json:"district"`
	State    string  `json:"state"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
}

type ListingView struct {
	ID                   string          `json:"id"`
	HostID               string          `json:"host_id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	PropertyType         string          `json:"property_type"`
	Location             ListingLocation `json:"location"`
	Amenities            []string        `json:"amenities"`
	PricePerNight        float64         `json:"price_per_night"`
	MaxGuests            int             `json:"max_guests"`
	Photos               []string        `json:"photos"`
	Status               string          `json:"status"`
	RejectReason         string          `json:"reject_reason,omitempty"`
	AvailabilityCalendar map[string]bool `json:"availability_calendar"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type ListingSummary struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	PropertyType  string          `json:"property_type"`
	Location      ListingLocation `json:"location"`
	PricePerNight float64         `json:"price_per_night"`
	MaxGuests     int             `json:"max_guests"`
	Thumbnail     string          `json:"thumbnail,omitempty"`
}

type ListingPage struct {
	Items      []ListingSummary `json:"items"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}

func MapListingLocation(l listings.Location) ListingLocation {
	return ListingLocation{Village: l.Village, District: l.District, State: l.State, Lat: l.Lat, Lon: l.Lon}
}

// MapListingView renders a listing; overrides is the calendar's explicit
// date→available map (absent dates are available by default).
func MapListingView(l *listings.Listing, overrides map[string]bool) ListingView {
	if l == nil {
		return ListingView{}
	}
	if overrides == nil {
		overrides = map[string]bool{}
	}
	return ListingView{
		ID:                   string(l.ID),
		HostID:               string(l.Host),
		Title:                l.Title,
		Description:          l.Description,
		PropertyType:         string(l.PropertyType),
		Location:             MapListingLocation(l.Location),
		Amenities:            append([]string(nil), l.Amenities...),
		PricePerNight:        l.NightlyRate.MajorFloat(),
		MaxGuests:            l.MaxGuests,
		Photos:               append([]string(nil), l.Photos...),
		Status:               string(l.State),
		RejectReason:         l.RejectReason,
		AvailabilityCalendar: overrides,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}

func MapListingSummary(l *listings.Listing) ListingSummary {
	out := ListingSummary{
		ID:            string(l.ID),
		Title:         l.Title,
		PropertyType:  string(l.PropertyType),
		Location:      MapListingLocation(l.Location),
		PricePerNight: l.NightlyRate.MajorFloat(),
		MaxGuests:     l.MaxGuests,
	}
	if len(l.Photos) > 0 {
		out.Thumbnail = l.Photos[0]
	}
	return out
}
