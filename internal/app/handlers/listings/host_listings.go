package listings

import (
	"context"

	"gramstay/internal/app/dto"
	"gramstay/internal/app/queries"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainlistings "gramstay/internal/domain/listings"
	domainuser "gramstay/internal/domain/user"
)

const hostListingsKey = "listings.host"

type HostListingsQuery struct {
	Session *domainauth.Session
	Page    int
	Limit   int
}

func (q HostListingsQuery) Key() string { return hostListingsKey }

// HostListingsHandler lists the caller's own listings in every state,
// drafts and rejections included.
type HostListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *HostListingsHandler) Handle(ctx context.Context, q HostListingsQuery) (dto.ListingPage, error) {
	if q.Session == nil || !q.Session.HasRole(domainuser.RoleHost) {
		return dto.ListingPage{}, ErrHostRoleRequired
	}

	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.ListingPage{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	params := domainlistings.SearchParams{
		Host:  domainlistings.HostID(q.Session.UserID),
		Limit: q.Limit,
	}.Normalized()
	params.Offset = (page - 1) * params.Limit

	result, err := unit.Listings().Search(ctx, params)
	if err != nil {
		return dto.ListingPage{}, err
	}
	return mapListingPage(result, page, params.Limit), nil
}

var _ queries.Handler[HostListingsQuery, dto.ListingPage] = (*HostListingsHandler)(nil)
