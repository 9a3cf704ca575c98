package listings

import (
	"context"
	"errors"

	"gramstay/internal/app/dto"
	"gramstay/internal/app/queries"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainlistings "gramstay/internal/domain/listings"
	domainuser "gramstay/internal/domain/user"
)

const getListingKey = "listings.get"

type GetListingQuery struct {
	Session   *domainauth.Session
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

// GetListingHandler returns one listing with its calendar overrides. Drafts
// and listings under review are visible only to their host and to admins.
type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.ListingView, error) {
	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.ListingView{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingView{}, err
	}
	if listing.State != domainlistings.ListingActive && !canSeeHidden(q.Session, listing) {
		return dto.ListingView{}, domainlistings.ErrNotFound
	}

	var overrides map[string]bool
	calendar, err := unit.Availability().Calendar(ctx, listing.ID)
	switch {
	case err == nil:
		overrides = dto.MapCalendarOverrides(calendar)
	case errors.Is(err, domainavailability.ErrNotFound):
		overrides = map[string]bool{}
	default:
		return dto.ListingView{}, err
	}
	return dto.MapListingView(listing, overrides), nil
}

func canSeeHidden(session *domainauth.Session, l *domainlistings.Listing) bool {
	if session == nil {
		return false
	}
	if session.HasRole(domainuser.RoleAdmin) {
		return true
	}
	return string(session.UserID) == string(l.Host)
}

var _ queries.Handler[GetListingQuery, dto.ListingView] = (*GetListingHandler)(nil)
