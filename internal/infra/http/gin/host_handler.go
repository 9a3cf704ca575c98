package ginserver

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"path/filepath"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/dto"
	availabilityapp "gramstay/internal/app/handlers/availability"
	listingsapp "gramstay/internal/app/handlers/listings"
	"gramstay/internal/app/queries"
	domainlistings "gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
	"gramstay/internal/domain/shared/money"
	"gramstay/internal/infra/storage/s3"
)

// HostHandler covers everything a host does with their own listings.
type HostHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Media    s3.Uploader
	Logger   *slog.Logger
}

type listingRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	PropertyType  string   `json:"property_type" binding:"required"`
	Village       string   `json:"village" binding:"required"`
	District      string   `json:"district" binding:"required"`
	State         string   `json:"state" binding:"required"`
	Lat           float64  `json:"lat"`
	Lon           float64  `json:"lon"`
	Amenities     []string `json:"amenities"`
	PricePerNight float64  `json:"price_per_night" binding:"required"`
	MaxGuests     int      `json:"max_guests" binding:"required"`
	Photos        []string `json:"photos"`
}

func (r listingRequest) location() domainlistings.Location {
	return domainlistings.Location{
		Village:  r.Village,
		District: r.District,
		State:    r.State,
		Lat:      r.Lat,
		Lon:      r.Lon,
	}
}

func (r listingRequest) nightlyRate() money.Money {
	return money.Must(int64(math.Round(r.PricePerNight*100)), money.INR)
}

func (h HostHandler) List(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	page, err := queries.Ask[listingsapp.HostListingsQuery, dto.ListingPage](c.Request.Context(), h.Queries, listingsapp.HostListingsQuery{
		Session: session,
		Page:    intQuery(c, "page"),
		Limit:   intQuery(c, "limit"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h HostHandler) Create(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := commands.Dispatch[listingsapp.CreateListingCommand, *dto.ListingView](c.Request.Context(), h.Commands, listingsapp.CreateListingCommand{
		CommandID:    uuid.NewString(),
		Session:      session,
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: req.PropertyType,
		Location:     req.location(),
		Amenities:    req.Amenities,
		NightlyRate:  req.nightlyRate(),
		MaxGuests:    req.MaxGuests,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h HostHandler) Update(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := commands.Dispatch[listingsapp.UpdateListingCommand, *dto.ListingView](c.Request.Context(), h.Commands, listingsapp.UpdateListingCommand{
		Session:      session,
		ListingID:    c.Param("id"),
		Title:        req.Title,
		Description:  req.Description,
		PropertyType: req.PropertyType,
		Location:     req.location(),
		Amenities:    req.Amenities,
		NightlyRate:  req.nightlyRate(),
		MaxGuests:    req.MaxGuests,
		Photos:       req.Photos,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h HostHandler) Submit(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	view, err := commands.Dispatch[listingsapp.SubmitListingCommand, *dto.ListingView](c.Request.Context(), h.Commands, listingsapp.SubmitListingCommand{
		Session:   session,
		ListingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UploadPhoto streams one multipart file to the media store, then records
// the resulting public URL on the listing.
func (h HostHandler) UploadPhoto(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer src.Close()

	key := fmt.Sprintf("listings/%s/%s%s", c.Param("id"), uuid.NewString(), filepath.Ext(file.Filename))
	url, err := h.Media.Upload(c.Request.Context(), key, src, file.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	view, err := commands.Dispatch[listingsapp.AddPhotoCommand, *dto.ListingView](c.Request.Context(), h.Commands, listingsapp.AddPhotoCommand{
		Session:   session,
		ListingID: c.Param("id"),
		URL:       url,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type availabilityRequest struct {
	Days map[string]bool `json:"days" binding:"required"`
}

func (h HostHandler) SetAvailability(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	days := make(map[dates.Date]bool, len(req.Days))
	for raw, open := range req.Days {
		d, err := dates.Parse(raw)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		days[d] = open
	}
	update, err := commands.Dispatch[availabilityapp.SetAvailabilityCommand, *dto.AvailabilityUpdate](c.Request.Context(), h.Commands, availabilityapp.SetAvailabilityCommand{
		Session:   session,
		ListingID: c.Param("id"),
		Days:      days,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, update)
}
