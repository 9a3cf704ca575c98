package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"gramstay/internal/app/dto"
	availabilityapp "gramstay/internal/app/handlers/availability"
	listingsapp "gramstay/internal/app/handlers/listings"
	"gramstay/internal/app/queries"
	"gramstay/internal/domain/shared/dates"
)

// ListingHandler serves the public catalog and calendar reads.
type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ListingHandler) Search(c *gin.Context) {
	q := listingsapp.SearchCatalogQuery{
		Query:         c.Query("q"),
		StateRegion:   c.Query("state"),
		District:      c.Query("district"),
		PropertyTypes: splitCSV(c.Query("property_type")),
		Amenities:     splitCSV(c.Query("amenities")),
		MinGuests:     intQuery(c, "guests"),
		PriceMin:      rupeesQuery(c, "price_min"),
		PriceMax:      rupeesQuery(c, "price_max"),
		Sort:          c.Query("sort"),
		Page:          intQuery(c, "page"),
		Limit:         intQuery(c, "limit"),
	}
	page, err := queries.Ask[listingsapp.SearchCatalogQuery, dto.ListingPage](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h ListingHandler) Get(c *gin.Context) {
	session, _ := currentSession(c)
	view, err := queries.Ask[listingsapp.GetListingQuery, dto.ListingView](c.Request.Context(), h.Queries, listingsapp.GetListingQuery{
		Session:   session,
		ListingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h ListingHandler) Quote(c *gin.Context) {
	checkIn, err := dates.Parse(c.Query("check_in"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	checkOut, err := dates.Parse(c.Query("check_out"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	quote, err := queries.Ask[listingsapp.QuoteStayQuery, dto.Quote](c.Request.Context(), h.Queries, listingsapp.QuoteStayQuery{
		ListingID: c.Param("id"),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h ListingHandler) Calendar(c *gin.Context) {
	month, err := queries.Ask[availabilityapp.GetMonthQuery, dto.CalendarMonth](c.Request.Context(), h.Queries, availabilityapp.GetMonthQuery{
		ListingID: c.Param("id"),
		Year:      intQuery(c, "year"),
		Month:     intQuery(c, "month"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, month)
}

// rupeesQuery reads a price filter in whole rupees and converts it to paise.
func rupeesQuery(c *gin.Context, name string) int64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v * 100
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
