package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gramstay/internal/app/dto"
	"gramstay/internal/app/queries"
	"gramstay/internal/app/uow"
	domainavailability "gramstay/internal/domain/availability"
	domainlistings "gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
)

var (
	ErrInvalidMonth       = errors.New("availability: invalid month")
	ErrUnitOfWorkRequired = errors.New("availability: unit of work required")
)

const getMonthKey = "availability.month"

type GetMonthQuery struct {
	ListingID string
	Year      int
	Month     int
}

func (q GetMonthQuery) Key() string { return getMonthKey }

// GetMonthHandler returns the calendar for one month. It is a public read:
// anyone planning a stay can see which nights are open. A listing with no
// stored calendar reads as fully available.
type GetMonthHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *GetMonthHandler) Handle(ctx context.Context, q GetMonthQuery) (dto.CalendarMonth, error) {
	if q.Year < 1 || q.Month < 1 || q.Month > 12 {
		return dto.CalendarMonth{}, ErrInvalidMonth
	}

	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.CalendarMonth{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	listingID := domainlistings.ListingID(q.ListingID)
	if _, err := unit.Listings().ByID(ctx, listingID); err != nil {
		return dto.CalendarMonth{}, err
	}

	calendar, err := unit.Availability().Calendar(ctx, listingID)
	if err != nil {
		if !errors.Is(err, domainavailability.ErrNotFound) {
			return dto.CalendarMonth{}, err
		}
		calendar = domainavailability.NewCalendar(listingID)
	}

	today := dates.FromTime(nowOrDefault(h.Now))
	days := calendar.Month(q.Year, time.Month(q.Month), today)
	label := fmt.Sprintf("%04d-%02d", q.Year, q.Month)
	return dto.MapCalendarMonth(q.ListingID, label, days), nil
}

var _ queries.Handler[GetMonthQuery, dto.CalendarMonth] = (*GetMonthHandler)(nil)
