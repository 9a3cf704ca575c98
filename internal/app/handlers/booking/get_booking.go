package booking

import (
	"context"

	"gramstay/internal/app/dto"
	"gramstay/internal/app/queries"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainbooking "gramstay/internal/domain/booking"
	domainuser "gramstay/internal/domain/user"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	Session   *domainauth.Session
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

// GetBookingHandler returns a single booking. Only the tourist who made it,
// the host of the listing, or an admin may see it; everyone else gets a
// not-found rather than a hint that the booking exists.
type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingView, error) {
	if q.Session == nil {
		return dto.BookingView{}, ErrUnauthorized
	}

	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.BookingView{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	if !canSeeBooking(q.Session, bk) {
		return dto.BookingView{}, domainbooking.ErrNotFound
	}
	return dto.MapBookingView(bk), nil
}

func canSeeBooking(session *domainauth.Session, bk *domainbooking.Booking) bool {
	if session.HasRole(domainuser.RoleAdmin) {
		return true
	}
	if string(session.UserID) == bk.TouristID {
		return true
	}
	return session.HasRole(domainuser.RoleHost) && string(session.UserID) == bk.HostID
}

var _ queries.Handler[GetBookingQuery, dto.BookingView] = (*GetBookingHandler)(nil)
