package listings

import (
	"context"
	"errors"
	"time"

	"gramstay/internal/app/outbox"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainlistings "gramstay/internal/domain/listings"
	domainuser "gramstay/internal/domain/user"
)

var (
	ErrHostRoleRequired   = errors.New("listings: host role required")
	ErrAdminRoleRequired  = errors.New("listings: admin role required")
	ErrUnitOfWorkRequired = errors.New("listings: unit of work required")
)

func beginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, false, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	return unit, uow.ContextWithUnitOfWork(execCtx, unit), true, nil
}

// ownListing loads a listing and checks the caller may manage it. Admins may
// manage any listing; hosts only their own, and anyone else is told it does
// not exist.
func ownListing(ctx context.Context, unit uow.UnitOfWork, session *domainauth.Session, id string) (*domainlistings.Listing, error) {
	if session == nil || !(session.HasRole(domainuser.RoleHost) || session.HasRole(domainuser.RoleAdmin)) {
		return nil, ErrHostRoleRequired
	}
	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(id))
	if err != nil {
		return nil, err
	}
	if session.HasRole(domainuser.RoleAdmin) {
		return listing, nil
	}
	if string(session.UserID) != string(listing.Host) {
		return nil, domainlistings.ErrNotFound
	}
	return listing, nil
}

func requireAdmin(session *domainauth.Session) error {
	if session == nil || !session.HasRole(domainuser.RoleAdmin) {
		return ErrAdminRoleRequired
	}
	return nil
}

func nowOrDefault(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

func encoderOrDefault(enc outbox.EventEncoder) outbox.EventEncoder {
	if enc != nil {
		return enc
	}
	return outbox.JSONEventEncoder{}
}

func drainListing(ctx context.Context, box outbox.Outbox, enc outbox.EventEncoder, l *domainlistings.Listing) error {
	pending := l.PendingEvents()
	l.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, enc, pending)
}
