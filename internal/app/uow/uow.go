package uow

import (
	"context"

	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	domainuser "gramstay/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// booking lifecycle relies on it: a status change and its calendar mutation
// commit together or not at all.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Availability() domainavailability.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository
	Sessions() domainauth.SessionStore

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
