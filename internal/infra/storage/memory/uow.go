package memory

import (
	"context"
	"errors"

	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	domainuser "gramstay/internal/domain/user"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary. No
// isolation is provided; atomicity comes from the repositories' optimistic
// version checks plus handler-level compensation.
type Factory struct {
	ListingsRepo     domainlistings.Repository
	AvailabilityRepo domainavailability.Repository
	BookingRepo      domainbooking.Repository
	UsersRepo        domainuser.Repository
	SessionsStore    domainauth.SessionStore
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.AvailabilityRepo == nil || f.BookingRepo == nil || f.UsersRepo == nil || f.SessionsStore == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		listings:     f.ListingsRepo,
		availability: f.AvailabilityRepo,
		bookings:     f.BookingRepo,
		users:        f.UsersRepo,
		sessions:     f.SessionsStore,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by the in-memory stores.
type Unit struct {
	listings     domainlistings.Repository
	availability domainavailability.Repository
	bookings     domainbooking.Repository
	users        domainuser.Repository
	sessions     domainauth.SessionStore
}

func (u *Unit) Listings() domainlistings.Repository { return u.listings }

func (u *Unit) Availability() domainavailability.Repository { return u.availability }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Users() domainuser.Repository { return u.users }

func (u *Unit) Sessions() domainauth.SessionStore { return u.sessions }

func (u *Unit) Commit(ctx context.Context) error { return nil }

func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.UoWFactory = Factory{}
