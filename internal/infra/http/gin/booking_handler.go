package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/dto"
	bookingapp "gramstay/internal/app/handlers/booking"
	"gramstay/internal/app/policies"
	"gramstay/internal/app/queries"
	"gramstay/internal/domain/shared/dates"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Payments policies.PaymentsPort
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ListingID       string `json:"listing_id" binding:"required"`
	CheckIn         string `json:"check_in" binding:"required"`
	CheckOut        string `json:"check_out" binding:"required"`
	Guests          int    `json:"guests" binding:"required"`
	SpecialRequests string `json:"special_requests"`
}

func (h BookingHandler) Create(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkIn, err := dates.Parse(req.CheckIn)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	checkOut, err := dates.Parse(req.CheckOut)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		Session:         session,
		ListingID:       req.ListingID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		SpecialRequests: req.SpecialRequests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	view, err := queries.Ask[bookingapp.GetBookingQuery, dto.BookingView](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{
		Session:   session,
		BookingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h BookingHandler) List(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	page, err := queries.Ask[bookingapp.ListBookingsQuery, dto.BookingPage](c.Request.Context(), h.Queries, bookingapp.ListBookingsQuery{
		Session:   session,
		ListingID: c.Query("listing_id"),
		Status:    c.Query("status"),
		Page:      intQuery(c, "page"),
		Limit:     intQuery(c, "limit"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h BookingHandler) Approve(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[bookingapp.ApproveBookingCommand, *bookingapp.ApproveBookingResult](c.Request.Context(), h.Commands, bookingapp.ApproveBookingCommand{
		Session:   session,
		BookingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, bookingapp.CancelBookingCommand{
		Session:   session,
		BookingID: c.Param("id"),
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Complete(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, *bookingapp.CompleteBookingResult](c.Request.Context(), h.Commands, bookingapp.CompleteBookingCommand{
		Session:   session,
		BookingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type paymentWebhookRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// PaymentWebhook accepts payment provider callbacks. Only a successful
// payment mutates anything; other statuses are acknowledged and dropped.
func (h BookingHandler) PaymentWebhook(c *gin.Context) {
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Status != "paid" {
		c.JSON(http.StatusOK, gin.H{"booking_id": req.BookingID, "ignored": true})
		return
	}
	result, err := commands.Dispatch[bookingapp.PaymentConfirmedCommand, *bookingapp.PaymentConfirmedResult](c.Request.Context(), h.Commands, bookingapp.PaymentConfirmedCommand{
		BookingID: req.BookingID,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PaymentStatus reads the payment state from the collaborator. The caller
// must be allowed to see the booking itself first.
func (h BookingHandler) PaymentStatus(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	view, err := queries.Ask[bookingapp.GetBookingQuery, dto.BookingView](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{
		Session:   session,
		BookingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	status, err := h.Payments.Status(c.Request.Context(), view.BookingID)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": view.BookingID, "payment_status": string(status)})
}

func intQuery(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
