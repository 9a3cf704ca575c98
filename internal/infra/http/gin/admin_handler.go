package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/dto"
	listingsapp "gramstay/internal/app/handlers/listings"
	"gramstay/internal/app/queries"
	domainuser "gramstay/internal/domain/user"
)

// AdminHandler hosts the moderation endpoints.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Users    domainuser.Repository
	Logger   *slog.Logger
}

func (h AdminHandler) ReviewQueue(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	page, err := queries.Ask[listingsapp.ReviewQueueQuery, dto.ListingPage](c.Request.Context(), h.Queries, listingsapp.ReviewQueueQuery{
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

func (h AdminHandler) ApproveListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	view, err := commands.Dispatch[listingsapp.ApproveListingCommand, *dto.ListingView](c.Request.Context(), h.Commands, listingsapp.ApproveListingCommand{
		Session:   session,
		ListingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type moderationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h AdminHandler) RejectListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := commands.Dispatch[listingsapp.RejectListingCommand, *dto.ListingView](c.Request.Context(), h.Commands, listingsapp.RejectListingCommand{
		Session:   session,
		ListingID: c.Param("id"),
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h AdminHandler) SuspendListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	var req moderationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := commands.Dispatch[listingsapp.SuspendListingCommand, *dto.ListingView](c.Request.Context(), h.Commands, listingsapp.SuspendListingCommand{
		Session:   session,
		ListingID: c.Param("id"),
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h AdminHandler) ListUsers(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if !session.HasRole(domainuser.RoleAdmin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}
	limit := intQuery(c, "limit")
	if limit < 1 || limit > 100 {
		limit = 50
	}
	page := intQuery(c, "page")
	if page < 1 {
		page = 1
	}
	users, total, err := h.Users.List(c.Request.Context(), domainuser.ListParams{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	out := dto.UserList{Items: make([]dto.UserProfile, 0, len(users)), Total: total}
	for _, u := range users {
		out.Items = append(out.Items, dto.MapUserProfile(u))
	}
	c.JSON(http.StatusOK, out)
}
