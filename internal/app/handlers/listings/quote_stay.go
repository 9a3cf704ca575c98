package listings

import (
	"context"

	"gramstay/internal/app/dto"
	"gramstay/internal/app/queries"
	"gramstay/internal/app/uow"
	domainlistings "gramstay/internal/domain/listings"
	domainpricing "gramstay/internal/domain/pricing"
	"gramstay/internal/domain/shared/dates"
)

const quoteStayKey = "listings.quote"

type QuoteStayQuery struct {
	ListingID string
	CheckIn   dates.Date
	CheckOut  dates.Date
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

// QuoteStayHandler prices a stay without creating anything. The same fee
// policy used at booking time runs here, so the quote a tourist sees is the
// amount they will be charged.
type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory
	Fees       domainpricing.FeePolicy
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.Quote, error) {
	unit, ctx, managed, err := beginUnit(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.Quote{}, err
	}
	if managed {
		defer func() { _ = unit.Rollback(ctx) }()
	}

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Quote{}, err
	}
	if listing.State != domainlistings.ListingActive {
		return dto.Quote{}, domainlistings.ErrNotFound
	}

	stay, err := dates.NewRange(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Quote{}, err
	}
	breakdown, err := h.Fees.Quote(listing.NightlyRate, stay)
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(breakdown), nil
}

var _ queries.Handler[QuoteStayQuery, dto.Quote] = (*QuoteStayHandler)(nil)
