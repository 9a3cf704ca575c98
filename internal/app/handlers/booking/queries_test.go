package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
)

// seedStays books n back-to-back weeks on listing-1 for the given tourist.
func (e *bookingEnv) seedStays(t *testing.T, tourist string, n int) {
	t.Helper()
	handler := e.requestHandler(false)
	for i := 0; i < n; i++ {
		checkIn := dates.New(2026, time.July, 1).AddDays(i * 7)
		cmd := RequestBookingCommand{
			CommandID: tourist + "-stay-" + string(rune('a'+i)),
			Session:   touristSession(tourist),
			ListingID: "listing-1",
			CheckIn:   checkIn,
			CheckOut:  checkIn.AddDays(3),
			Guests:    2,
		}
		if _, err := handler.Handle(context.Background(), cmd); err != nil {
			t.Fatalf("seeding stay %d for %s: %v", i, tourist, err)
		}
	}
}

func TestGetBooking(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
	env.seedBooking(t, "bk-1", false)

	handler := &GetBookingHandler{UoWFactory: env.factory}

	t.Run("tourist sees their own booking", func(t *testing.T) {
		view, err := handler.Handle(context.Background(), GetBookingQuery{Session: touristSession("tourist-1"), BookingID: "bk-1"})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if view.BookingID != "bk-1" {
			t.Fatalf("booking id = %s", view.BookingID)
		}
		if view.TotalAmount != 6420 {
			t.Fatalf("total_amount = %v, want 6420", view.TotalAmount)
		}
	})

	t.Run("listing host sees it too", func(t *testing.T) {
		if _, err := handler.Handle(context.Background(), GetBookingQuery{Session: hostSession("host-1"), BookingID: "bk-1"}); err != nil {
			t.Fatalf("host get: %v", err)
		}
	})

	t.Run("strangers get a not-found", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), GetBookingQuery{Session: touristSession("tourist-9"), BookingID: "bk-1"})
		if !errors.Is(err, domainbooking.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("no session", func(t *testing.T) {
		if _, err := handler.Handle(context.Background(), GetBookingQuery{BookingID: "bk-1"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestListBookings(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
	env.seedStays(t, "tourist-1", 3)
	env.seedStays(t, "tourist-2", 2)

	handler := &ListBookingsHandler{UoWFactory: env.factory}

	t.Run("tourist scope", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListBookingsQuery{Session: touristSession("tourist-1")})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.TotalCount != 3 {
			t.Fatalf("total_count = %d, want 3", page.TotalCount)
		}
		for _, b := range page.Items {
			if b.TouristID != "tourist-1" {
				t.Fatalf("leaked booking %s of %s", b.BookingID, b.TouristID)
			}
		}
	})

	t.Run("host sees every booking on their listings", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListBookingsQuery{Session: hostSession("host-1")})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.TotalCount != 5 {
			t.Fatalf("total_count = %d, want 5", page.TotalCount)
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListBookingsQuery{Session: adminSession("admin-1")})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.TotalCount != 5 {
			t.Fatalf("total_count = %d, want 5", page.TotalCount)
		}
	})

	t.Run("pagination math", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListBookingsQuery{Session: adminSession("admin-1"), Page: 2, Limit: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page.Items) != 2 {
			t.Fatalf("items = %d, want 2", len(page.Items))
		}
		if page.Page != 2 || page.Limit != 2 {
			t.Fatalf("page/limit = %d/%d", page.Page, page.Limit)
		}
		if page.TotalPages != 3 {
			t.Fatalf("total_pages = %d, want 3", page.TotalPages)
		}
	})

	t.Run("limit defaults and caps", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListBookingsQuery{Session: adminSession("admin-1"), Limit: -1})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.Limit != 20 {
			t.Fatalf("default limit = %d, want 20", page.Limit)
		}
		page, err = handler.Handle(context.Background(), ListBookingsQuery{Session: adminSession("admin-1"), Limit: 500})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.Limit != 100 {
			t.Fatalf("capped limit = %d, want 100", page.Limit)
		}
	})

	t.Run("status filter", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), ListBookingsQuery{Session: adminSession("admin-1"), Status: string(domainbooking.StatusConfirmed)})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.TotalCount != 0 {
			t.Fatalf("no booking is confirmed yet, got %d", page.TotalCount)
		}
	})

	t.Run("unknown status filter is rejected", func(t *testing.T) {
		if _, err := handler.Handle(context.Background(), ListBookingsQuery{Session: adminSession("admin-1"), Status: "archived"}); !errors.Is(err, ErrUnknownStatus) {
			t.Fatalf("expected ErrUnknownStatus, got %v", err)
		}
	})

	t.Run("no session", func(t *testing.T) {
		if _, err := handler.Handle(context.Background(), ListBookingsQuery{}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
