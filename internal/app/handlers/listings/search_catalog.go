package listings

import (
	"context"

	"gramstay/internal/app/dto"
	"gramstay/internal/app/queries"
	"gramstay/internal/app/uow"
	domainlistings "gramstay/internal/domain/listings"
)

const searchCatalogKey = "listings.search"

type SearchCatalogQuery struct {
	Query         string
	StateRegion   string
	District      string
	PropertyTypes []string
	Amenities     []string
	MinGuests     int
	PriceMin      int64
	PriceMax      int64
	Sort          string
	Page          int
	Limit         int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

// SearchCatalogHandler serves the public catalog. Only active listings are
// visible here regardless of the filters supplied.
type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.ListingPage, error) {
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
	types := make([]domainlistings.PropertyType, 0, len(q.PropertyTypes))
	for _, t := range q.PropertyTypes {
		types = append(types, domainlistings.PropertyType(t))
	}
	params := domainlistings.SearchParams{
		Query:         q.Query,
		StateRegion:   q.StateRegion,
		District:      q.District,
		PropertyTypes: types,
		Amenities:     q.Amenities,
		MinGuests:     q.MinGuests,
		PriceMin:      q.PriceMin,
		PriceMax:      q.PriceMax,
		OnlyActive:    true,
		Sort:          domainlistings.SortOrder(q.Sort),
		Limit:         q.Limit,
	}.Normalized()
	params.Offset = (page - 1) * params.Limit

	result, err := unit.Listings().Search(ctx, params)
	if err != nil {
		return dto.ListingPage{}, err
	}

	out := dto.ListingPage{
		Items:      make([]dto.ListingSummary, 0, len(result.Items)),
		Page:       page,
		Limit:      params.Limit,
		TotalCount: result.Total,
	}
	if params.Limit > 0 {
		out.TotalPages = (result.Total + params.Limit - 1) / params.Limit
	}
	for _, l := range result.Items {
		out.Items = append(out.Items, dto.MapListingSummary(l))
	}
	return out, nil
}

var _ queries.Handler[SearchCatalogQuery, dto.ListingPage] = (*SearchCatalogHandler)(nil)
