package listings

import "strings"

type SortOrder string

const (
	SortByPriceAsc  SortOrder = "price_asc"
	SortByPriceDesc SortOrder = "price_desc"
	SortByNewest    SortOrder = "newest"
)

// SearchParams filter the public catalog. Zero values mean "no filter".
type SearchParams struct {
	Query         string
	StateRegion   string
	District      string
	PropertyTypes []PropertyType
	Amenities     []string
	MinGuests     int
	PriceMin      int64
	PriceMax      int64
	Host          HostID
	States        []ListingState
	OnlyActive    bool
	Sort          SortOrder
	Limit         int
	Offset        int
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Normalized returns a copy with trimmed tokens and clamped paging.
func (p SearchParams) Normalized() SearchParams {
	out := p
	out.Query = strings.ToLower(strings.TrimSpace(p.Query))
	out.StateRegion = strings.TrimSpace(p.StateRegion)
	out.District = strings.TrimSpace(p.District)
	out.Amenities = normalizeTokens(p.Amenities)
	if out.Limit <= 0 {
		out.Limit = defaultLimit
	}
	if out.Limit > maxLimit {
		out.Limit = maxLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}

func normalizeTokens(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

type SearchResult struct {
	Items []*Listing
	Total int
}
