package listings

import (
	"context"
	"errors"
	"testing"
	"time"

	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainlistings "gramstay/internal/domain/listings"
	domainpricing "gramstay/internal/domain/pricing"
	"gramstay/internal/domain/shared/dates"
	"gramstay/internal/domain/shared/money"
	domainuser "gramstay/internal/domain/user"
	"gramstay/internal/infra/storage/memory"
)

var listingNow = time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

type listingEnv struct {
	factory  uow.UoWFactory
	listings *memory.ListingRepository
	outbox   *memory.Outbox
}

func newListingEnv(t *testing.T) *listingEnv {
	t.Helper()
	env := &listingEnv{
		listings: memory.NewListingRepository(),
		outbox:   memory.NewOutbox(),
	}
	env.factory = memory.Factory{
		ListingsRepo:     env.listings,
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		BookingRepo:      memory.NewBookingRepository(),
		UsersRepo:        memory.NewUserRepository(),
		SessionsStore:    memory.NewSessionStore(),
	}
	return env
}

func (e *listingEnv) seed(t *testing.T, id, host string, state domainlistings.ListingState, rate money.Money) {
	t.Helper()
	err := e.listings.Save(context.Background(), &domainlistings.Listing{
		ID:           domainlistings.ListingID(id),
		Host:         domainlistings.HostID(host),
		Title:        "Terraced Farmstay " + id,
		PropertyType: domainlistings.PropertyFarmstay,
		Location:     domainlistings.Location{Village: "Mawlynnong", District: "East Khasi Hills", State: "Meghalaya"},
		Amenities:    []string{"wifi", "meals"},
		NightlyRate:  rate,
		MaxGuests:    4,
		State:        state,
		CreatedAt:    listingNow,
		UpdatedAt:    listingNow,
	})
	if err != nil {
		t.Fatalf("seeding listing %s: %v", id, err)
	}
}

func session(id string, roles ...domainuser.Role) *domainauth.Session {
	return &domainauth.Session{Token: "tok", UserID: domainuser.ID(id), Roles: roles}
}

func TestCreateListing(t *testing.T) {
	t.Parallel()

	newHandler := func(env *listingEnv) *CreateListingHandler {
		return &CreateListingHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return listingNow }}
	}
	cmd := func(s *domainauth.Session) CreateListingCommand {
		return CreateListingCommand{
			CommandID:    "listing-1",
			Session:      s,
			Title:        "Spiti Mud House",
			PropertyType: string(domainlistings.PropertyHomestay),
			Location:     domainlistings.Location{Village: "Langza", State: "Himachal Pradesh"},
			NightlyRate:  money.Rupees(1800),
			MaxGuests:    3,
		}
	}

	t.Run("host opens a draft", func(t *testing.T) {
		env := newListingEnv(t)
		view, err := newHandler(env).Handle(context.Background(), cmd(session("host-1", domainuser.RoleHost)))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if view.Status != string(domainlistings.ListingDraft) {
			t.Fatalf("status = %s, want draft", view.Status)
		}
		if view.PricePerNight != 1800 {
			t.Fatalf("price_per_night = %v, want 1800", view.PricePerNight)
		}
	})

	t.Run("tourists may not create", func(t *testing.T) {
		env := newListingEnv(t)
		if _, err := newHandler(env).Handle(context.Background(), cmd(session("tourist-1", domainuser.RoleTourist))); !errors.Is(err, ErrHostRoleRequired) {
			t.Fatalf("expected ErrHostRoleRequired, got %v", err)
		}
	})

	t.Run("domain validation surfaces", func(t *testing.T) {
		env := newListingEnv(t)
		bad := cmd(session("host-1", domainuser.RoleHost))
		bad.MaxGuests = 0
		if _, err := newHandler(env).Handle(context.Background(), bad); !errors.Is(err, domainlistings.ErrGuestsLimit) {
			t.Fatalf("expected ErrGuestsLimit, got %v", err)
		}
	})
}

func TestSubmitAndReview(t *testing.T) {
	t.Parallel()

	env := newListingEnv(t)
	env.seed(t, "listing-1", "host-1", domainlistings.ListingDraft, money.Rupees(2000))

	submit := &SubmitListingHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return listingNow }}
	review := &ReviewListingHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return listingNow }}

	t.Run("draft goes to review", func(t *testing.T) {
		view, err := submit.Handle(context.Background(), SubmitListingCommand{Session: session("host-1", domainuser.RoleHost), ListingID: "listing-1"})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if view.Status != string(domainlistings.ListingPendingReview) {
			t.Fatalf("status = %s, want pending_review", view.Status)
		}
	})

	t.Run("queue shows it", func(t *testing.T) {
		queue := &ReviewQueueHandler{UoWFactory: env.factory}
		page, err := queue.Handle(context.Background(), ReviewQueueQuery{Session: session("admin-1", domainuser.RoleAdmin)})
		if err != nil {
			t.Fatalf("queue: %v", err)
		}
		if page.TotalCount != 1 {
			t.Fatalf("queue size = %d, want 1", page.TotalCount)
		}
		if _, err := queue.Handle(context.Background(), ReviewQueueQuery{Session: session("host-1", domainuser.RoleHost)}); !errors.Is(err, ErrAdminRoleRequired) {
			t.Fatalf("expected ErrAdminRoleRequired, got %v", err)
		}
	})

	t.Run("approve activates", func(t *testing.T) {
		view, err := review.HandleApprove(context.Background(), ApproveListingCommand{Session: session("admin-1", domainuser.RoleAdmin), ListingID: "listing-1"})
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if view.Status != string(domainlistings.ListingActive) {
			t.Fatalf("status = %s, want active", view.Status)
		}
	})

	t.Run("approve out of order", func(t *testing.T) {
		if _, err := review.HandleApprove(context.Background(), ApproveListingCommand{Session: session("admin-1", domainuser.RoleAdmin), ListingID: "listing-1"}); !errors.Is(err, domainlistings.ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("suspend with reason", func(t *testing.T) {
		view, err := review.HandleSuspend(context.Background(), SuspendListingCommand{Session: session("admin-1", domainuser.RoleAdmin), ListingID: "listing-1", Reason: "complaints"})
		if err != nil {
			t.Fatalf("suspend: %v", err)
		}
		if view.Status != string(domainlistings.ListingSuspended) {
			t.Fatalf("status = %s, want suspended", view.Status)
		}
	})

	t.Run("non-admin cannot moderate", func(t *testing.T) {
		if _, err := review.HandleApprove(context.Background(), ApproveListingCommand{Session: session("host-1", domainuser.RoleHost), ListingID: "listing-1"}); !errors.Is(err, ErrAdminRoleRequired) {
			t.Fatalf("expected ErrAdminRoleRequired, got %v", err)
		}
	})
}

func TestUpdateListing(t *testing.T) {
	t.Parallel()

	env := newListingEnv(t)
	env.seed(t, "listing-1", "host-1", domainlistings.ListingActive, money.Rupees(2000))

	handler := &UpdateListingHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return listingNow }}

	t.Run("owner edits", func(t *testing.T) {
		view, err := handler.Handle(context.Background(), UpdateListingCommand{
			Session:      session("host-1", domainuser.RoleHost),
			ListingID:    "listing-1",
			Title:        "Renamed Farmstay",
			PropertyType: string(domainlistings.PropertyFarmstay),
			Location:     domainlistings.Location{Village: "Mawlynnong", State: "Meghalaya"},
			NightlyRate:  money.Rupees(2500),
			MaxGuests:    5,
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if view.Title != "Renamed Farmstay" || view.PricePerNight != 2500 {
			t.Fatalf("update not applied: %s / %v", view.Title, view.PricePerNight)
		}
	})

	t.Run("other hosts get a not-found", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), UpdateListingCommand{
			Session:   session("host-2", domainuser.RoleHost),
			ListingID: "listing-1",
			Title:     "Hijack",
		})
		if !errors.Is(err, domainlistings.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAddPhoto(t *testing.T) {
	t.Parallel()

	env := newListingEnv(t)
	env.seed(t, "listing-1", "host-1", domainlistings.ListingDraft, money.Rupees(2000))

	handler := &AddPhotoHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return listingNow }}

	t.Run("attaches url", func(t *testing.T) {
		view, err := handler.Handle(context.Background(), AddPhotoCommand{
			Session:   session("host-1", domainuser.RoleHost),
			ListingID: "listing-1",
			URL:       "https://media.example.com/listings/listing-1/front.jpg",
		})
		if err != nil {
			t.Fatalf("add photo: %v", err)
		}
		if len(view.Photos) != 1 {
			t.Fatalf("photos = %d, want 1", len(view.Photos))
		}
	})

	t.Run("url required", func(t *testing.T) {
		if _, err := handler.Handle(context.Background(), AddPhotoCommand{Session: session("host-1", domainuser.RoleHost), ListingID: "listing-1"}); !errors.Is(err, ErrPhotoURLRequired) {
			t.Fatalf("expected ErrPhotoURLRequired, got %v", err)
		}
	})
}

func TestSearchCatalog(t *testing.T) {
	t.Parallel()

	env := newListingEnv(t)
	env.seed(t, "listing-1", "host-1", domainlistings.ListingActive, money.Rupees(1500))
	env.seed(t, "listing-2", "host-1", domainlistings.ListingActive, money.Rupees(3000))
	env.seed(t, "listing-3", "host-2", domainlistings.ListingDraft, money.Rupees(900))

	handler := &SearchCatalogHandler{UoWFactory: env.factory}

	t.Run("only active listings are public", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), SearchCatalogQuery{})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if page.TotalCount != 2 {
			t.Fatalf("total_count = %d, want 2", page.TotalCount)
		}
	})

	t.Run("price band filters in paise", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), SearchCatalogQuery{PriceMax: money.Rupees(2000).Amount})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if page.TotalCount != 1 {
			t.Fatalf("total_count = %d, want 1", page.TotalCount)
		}
	})

	t.Run("price sort", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), SearchCatalogQuery{Sort: string(domainlistings.SortByPriceDesc)})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(page.Items) != 2 || page.Items[0].PricePerNight < page.Items[1].PricePerNight {
			t.Fatalf("expected price descending, got %+v", page.Items)
		}
	})

	t.Run("paging", func(t *testing.T) {
		page, err := handler.Handle(context.Background(), SearchCatalogQuery{Page: 2, Limit: 1})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(page.Items) != 1 || page.TotalPages != 2 {
			t.Fatalf("items = %d, total_pages = %d", len(page.Items), page.TotalPages)
		}
	})
}

func TestHostListings(t *testing.T) {
	t.Parallel()

	env := newListingEnv(t)
	env.seed(t, "listing-1", "host-1", domainlistings.ListingActive, money.Rupees(1500))
	env.seed(t, "listing-2", "host-1", domainlistings.ListingDraft, money.Rupees(900))
	env.seed(t, "listing-3", "host-2", domainlistings.ListingActive, money.Rupees(2100))

	handler := &HostListingsHandler{UoWFactory: env.factory}

	page, err := handler.Handle(context.Background(), HostListingsQuery{Session: session("host-1", domainuser.RoleHost)})
	if err != nil {
		t.Fatalf("host listings: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("total_count = %d, want 2", page.TotalCount)
	}
}

func TestGetListing(t *testing.T) {
	t.Parallel()

	env := newListingEnv(t)
	env.seed(t, "listing-1", "host-1", domainlistings.ListingDraft, money.Rupees(1500))

	handler := &GetListingHandler{UoWFactory: env.factory}

	t.Run("drafts hidden from the public", func(t *testing.T) {
		if _, err := handler.Handle(context.Background(), GetListingQuery{ListingID: "listing-1"}); !errors.Is(err, domainlistings.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("owner sees their draft", func(t *testing.T) {
		view, err := handler.Handle(context.Background(), GetListingQuery{Session: session("host-1", domainuser.RoleHost), ListingID: "listing-1"})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if view.ID != "listing-1" {
			t.Fatalf("listing id = %s", view.ID)
		}
	})
}

func TestQuoteStay(t *testing.T) {
	t.Parallel()

	env := newListingEnv(t)
	env.seed(t, "listing-1", "host-1", domainlistings.ListingActive, money.Rupees(2000))
	env.seed(t, "listing-2", "host-1", domainlistings.ListingDraft, money.Rupees(2000))

	handler := &QuoteStayHandler{UoWFactory: env.factory, Fees: domainpricing.DefaultPolicy()}

	t.Run("total is the literal sum", func(t *testing.T) {
		quote, err := handler.Handle(context.Background(), QuoteStayQuery{
			ListingID: "listing-1",
			CheckIn:   dates.New(2026, time.June, 10),
			CheckOut:  dates.New(2026, time.June, 13),
		})
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		if quote.Nights != 3 {
			t.Fatalf("nights = %d, want 3", quote.Nights)
		}
		if quote.BaseAmount != 6000 || quote.PlatformFee != 300 || quote.CommunityContribution != 120 {
			t.Fatalf("breakdown = %v/%v/%v", quote.BaseAmount, quote.PlatformFee, quote.CommunityContribution)
		}
		if quote.TotalAmount != quote.BaseAmount+quote.PlatformFee+quote.CommunityContribution {
			t.Fatalf("total %v is not the sum of its parts", quote.TotalAmount)
		}
	})

	t.Run("inactive listings do not quote", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), QuoteStayQuery{
			ListingID: "listing-2",
			CheckIn:   dates.New(2026, time.June, 10),
			CheckOut:  dates.New(2026, time.June, 13),
		})
		if !errors.Is(err, domainlistings.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("reversed dates", func(t *testing.T) {
		_, err := handler.Handle(context.Background(), QuoteStayQuery{
			ListingID: "listing-1",
			CheckIn:   dates.New(2026, time.June, 13),
			CheckOut:  dates.New(2026, time.June, 10),
		})
		if !errors.Is(err, dates.ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})
}
