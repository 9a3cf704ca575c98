package booking

import (
	"context"
	"errors"

	"gramstay/internal/app/dto"
	"gramstay/internal/app/queries"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	domainuser "gramstay/internal/domain/user"
)

const listBookingsKey = "booking.list"

var ErrUnknownStatus = errors.New("booking: unknown status filter")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListBookingsQuery struct {
	Session   *domainauth.Session
	ListingID string
	Status    string
	Page      int
	Limit     int
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

// ListBookingsHandler returns a page of bookings scoped to the caller:
// tourists see their own, hosts see bookings on their listings, admins see
// everything.
type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (dto.BookingPage, error) {
	if q.Session == nil {
		return dto.BookingPage{}, ErrUnauthorized
	}
	if q.Status != "" && !domainbooking.Status(q.Status).Valid() {
		return dto.BookingPage{}, ErrUnknownStatus
	}

	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.BookingPage{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	page, limit := normalizePage(q.Page, q.Limit)
	params := domainbooking.ListParams{
		ListingID: domainlistings.ListingID(q.ListingID),
		Status:    domainbooking.Status(q.Status),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}
	switch {
	case q.Session.HasRole(domainuser.RoleAdmin):
		// unrestricted
	case q.Session.HasRole(domainuser.RoleHost):
		params.HostID = string(q.Session.UserID)
	default:
		params.TouristID = string(q.Session.UserID)
	}

	items, total, err := unit.Bookings().List(ctx, params)
	if err != nil {
		return dto.BookingPage{}, err
	}
	return dto.MapBookingPage(items, page, limit, total), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

var _ queries.Handler[ListBookingsQuery, dto.BookingPage] = (*ListBookingsHandler)(nil)
