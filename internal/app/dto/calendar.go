package dto

import (
	"gramstay/internal/domain/availability"
)

type CalendarDay struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Editable  bool   `json:"editable"`
}

type CalendarMonth struct {
	ListingID string        `json:"listing_id"`
	Month     string        `json:"month"`
	Days      []CalendarDay `json:"days"`
}

// AvailabilityUpdate is the PATCH result: the applied overrides plus any
// dates that now conflict with a confirmed booking, for the UI to surface.
type AvailabilityUpdate struct {
	ListingID    string          `json:"listing_id"`
	Availability map[string]bool `json:"availability"`
	Conflicts    []string        `json:"conflicts,omitempty"`
}

func MapCalendarMonth(listingID, month string, days []availability.DayStatus) CalendarMonth {
	out := CalendarMonth{ListingID: listingID, Month: month, Days: make([]CalendarDay, 0, len(days))}
	for _, d := range days {
		out.Days = append(out.Days, CalendarDay{
			Date:      d.Date.String(),
			Available: d.Available,
			Editable:  d.Editable,
		})
	}
	return out
}

// MapCalendarOverrides flattens the explicit per-date flags for API payloads.
func MapCalendarOverrides(cal *availability.Calendar) map[string]bool {
	out := make(map[string]bool, len(cal.Days))
	for d, v := range cal.Days {
		out[d.String()] = v
	}
	return out
}
