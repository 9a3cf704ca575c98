package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "gramstay/internal/app/handlers/availability"
	bookingapp "gramstay/internal/app/handlers/booking"
	listingsapp "gramstay/internal/app/handlers/listings"
	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	domainpricing "gramstay/internal/domain/pricing"
	"gramstay/internal/domain/shared/dates"
	domainuser "gramstay/internal/domain/user"
	"gramstay/internal/infra/payments"
)

// respondError maps domain and application errors onto HTTP statuses. The
// one special case is the unavailable-dates conflict, which carries the
// exact blocked dates in the body.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var unavailable *domainavailability.UnavailableError
	if errors.As(err, &unavailable) {
		days := make([]string, 0, len(unavailable.Dates))
		for _, d := range unavailable.Dates {
			days = append(days, d.String())
		}
		c.JSON(http.StatusConflict, gin.H{"error": "dates unavailable", "unavailable_dates": days})
		return
	}

	switch {
	case errors.Is(err, bookingapp.ErrUnauthorized),
		errors.Is(err, domainauth.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, bookingapp.ErrNotBookingHost),
		errors.Is(err, bookingapp.ErrNotBookingParty),
		errors.Is(err, listingsapp.ErrHostRoleRequired),
		errors.Is(err, listingsapp.ErrAdminRoleRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainlistings.ErrNotFound),
		errors.Is(err, domainavailability.ErrNotFound),
		errors.Is(err, domainuser.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, bookingapp.ErrGuestCountOutOfRange),
		errors.Is(err, bookingapp.ErrCheckInPast),
		errors.Is(err, bookingapp.ErrUnknownStatus),
		errors.Is(err, dates.ErrInvalidRange),
		errors.Is(err, dates.ErrInvalidDate),
		errors.Is(err, domainavailability.ErrDateInPast),
		errors.Is(err, availabilityapp.ErrInvalidMonth),
		errors.Is(err, availabilityapp.ErrNoDates),
		errors.Is(err, domainpricing.ErrInvalidRange),
		errors.Is(err, domainbooking.ErrInvalidGuests),
		errors.Is(err, domainbooking.ErrReasonRequired),
		errors.Is(err, domainlistings.ErrTitleRequired),
		errors.Is(err, domainlistings.ErrInvalidType),
		errors.Is(err, domainlistings.ErrGuestsLimit),
		errors.Is(err, domainlistings.ErrNightlyRate),
		errors.Is(err, domainlistings.ErrLocationRequired),
		errors.Is(err, listingsapp.ErrPhotoURLRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domainavailability.ErrDatesUnavailable),
		errors.Is(err, domainbooking.ErrCancellationWindowPassed),
		errors.Is(err, domainbooking.ErrStayNotFinished),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainlistings.ErrInvalidState),
		errors.Is(err, bookingapp.ErrListingNotBookable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, payments.ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment service unavailable"})
	default:
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
