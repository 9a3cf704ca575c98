package ginserver

import (
	"log/slog"
	"net/http"
	"time"

	cors "github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"gramstay/internal/infra/obs"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     AuthHandler
	Bookings BookingHandler
	Listings ListingHandler
	Host     HostHandler
	Admin    AdminHandler
	Health   obs.HealthHandlers
	Session  AuthMiddleware
}

// NewServer wires the gin engine with middleware and the versioned API.
func NewServer(env, addr string, logger *slog.Logger, h Handlers) *http.Server {
	configureGinMode(env)

	engine := gin.New()
	engine.Use(gin.Recovery())

	mw := obs.Middleware{Logger: logger}
	engine.Use(mw.RequestID())
	engine.Use(mw.LoggerMiddleware())

	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	engine.GET("/livez", h.Health.Livez)
	engine.GET("/readyz", h.Health.Readyz)

	api := engine.Group("/api/v1")
	api.Use(h.Session.Handle)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.Me)
	}

	listings := api.Group("/listings")
	{
		listings.GET("", h.Listings.Search)
		listings.GET("/:id", h.Listings.Get)
		listings.GET("/:id/quote", h.Listings.Quote)
		listings.GET("/:id/calendar", h.Listings.Calendar)
		listings.PATCH("/:id/availability", h.Host.SetAvailability)
	}

	bookings := api.Group("/bookings")
	{
		bookings.POST("", h.Bookings.Create)
		bookings.GET("", h.Bookings.List)
		bookings.GET("/:id", h.Bookings.Get)
		bookings.POST("/:id/approve", h.Bookings.Approve)
		bookings.POST("/:id/cancel", h.Bookings.Cancel)
		bookings.POST("/:id/complete", h.Bookings.Complete)
		bookings.GET("/:id/payment", h.Bookings.PaymentStatus)
	}
	api.POST("/payments/webhook", h.Bookings.PaymentWebhook)

	host := api.Group("/host/listings")
	{
		host.GET("", h.Host.List)
		host.POST("", h.Host.Create)
		host.PUT("/:id", h.Host.Update)
		host.POST("/:id/submit", h.Host.Submit)
		host.POST("/:id/photos", h.Host.UploadPhoto)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/listings/review", h.Admin.ReviewQueue)
		admin.POST("/listings/:id/approve", h.Admin.ApproveListing)
		admin.POST("/listings/:id/reject", h.Admin.RejectListing)
		admin.POST("/listings/:id/suspend", h.Admin.SuspendListing)
		admin.GET("/users", h.Admin.ListUsers)
	}

	return &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func configureGinMode(env string) {
	switch env {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
