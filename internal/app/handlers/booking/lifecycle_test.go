package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"gramstay/internal/app/policies"
	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
	"gramstay/internal/domain/shared/money"
	domainuser "gramstay/internal/domain/user"
)

type fakePayments struct {
	collects int
	refunds  int
	statuses int
	fail     bool
}

func (f *fakePayments) Collect(ctx context.Context, bookingID string, amount money.Money) (string, error) {
	f.collects++
	if f.fail {
		return "", errors.New("payments down")
	}
	return "pay-" + bookingID, nil
}

func (f *fakePayments) Refund(ctx context.Context, bookingID string, amount money.Money) error {
	f.refunds++
	if f.fail {
		return errors.New("payments down")
	}
	return nil
}

func (f *fakePayments) Status(ctx context.Context, bookingID string) (policies.PaymentStatus, error) {
	f.statuses++
	return policies.PaymentStatusPaid, nil
}

func adminSession(id string) *domainauth.Session {
	return &domainauth.Session{
		Token:  "tok",
		UserID: domainuser.ID(id),
		Roles:  []domainuser.Role{domainuser.RoleAdmin},
	}
}

// seedBooking runs a real request through the handler so the fixtures carry
// correct prices and references.
func (e *bookingEnv) seedBooking(t *testing.T, id string, autoApprove bool) {
	t.Helper()
	if _, err := e.requestHandler(autoApprove).Handle(context.Background(), stayRequest(id, touristSession("tourist-1"))); err != nil {
		t.Fatalf("seeding booking %s: %v", id, err)
	}
}

func TestApproveBooking(t *testing.T) {
	t.Parallel()

	t.Run("host approval blocks the nights", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", false)

		handler := &ApproveBookingHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return handlerNow }}
		res, err := handler.Handle(context.Background(), ApproveBookingCommand{Session: hostSession("host-1"), BookingID: "bk-1"})
		if err != nil {
			t.Fatalf("approve: %v", err)
		}
		if res.Status != string(domainbooking.StatusConfirmed) {
			t.Fatalf("status = %s, want confirmed", res.Status)
		}
		cal, _ := env.calendars.Calendar(context.Background(), "listing-1")
		if cal.Available(dates.New(2026, time.June, 10)) {
			t.Fatalf("approved booking must hold its nights")
		}
	})

	t.Run("only the listing host or an admin", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", false)

		handler := &ApproveBookingHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return handlerNow }}
		if _, err := handler.Handle(context.Background(), ApproveBookingCommand{Session: hostSession("host-2"), BookingID: "bk-1"}); !errors.Is(err, ErrNotBookingHost) {
			t.Fatalf("expected ErrNotBookingHost, got %v", err)
		}
		if _, err := handler.Handle(context.Background(), ApproveBookingCommand{Session: adminSession("admin-1"), BookingID: "bk-1"}); err != nil {
			t.Fatalf("admin approve: %v", err)
		}
	})

	t.Run("dates gone since the request", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", false)
		env.seedBooking(t, "bk-2", false)

		handler := &ApproveBookingHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return handlerNow }}
		if _, err := handler.Handle(context.Background(), ApproveBookingCommand{Session: hostSession("host-1"), BookingID: "bk-1"}); err != nil {
			t.Fatalf("first approve: %v", err)
		}
		if _, err := handler.Handle(context.Background(), ApproveBookingCommand{Session: hostSession("host-1"), BookingID: "bk-2"}); !errors.Is(err, domainavailability.ErrDatesUnavailable) {
			t.Fatalf("expected ErrDatesUnavailable, got %v", err)
		}
	})
}

func TestCancelBooking(t *testing.T) {
	t.Parallel()

	newCancelHandler := func(env *bookingEnv, pay *fakePayments) *CancelBookingHandler {
		return &CancelBookingHandler{
			UoWFactory:         env.factory,
			Payments:           pay,
			CancellationWindow: 24 * time.Hour,
			Outbox:             env.outbox,
			Now:                func() time.Time { return handlerNow },
		}
	}

	t.Run("tourist cancel releases the nights", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", true)

		pay := &fakePayments{}
		res, err := newCancelHandler(env, pay).Handle(context.Background(), CancelBookingCommand{
			Session:   touristSession("tourist-1"),
			BookingID: "bk-1",
			Reason:    "plans changed",
		})
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if res.Status != string(domainbooking.StatusCancelled) {
			t.Fatalf("status = %s, want cancelled", res.Status)
		}
		cal, _ := env.calendars.Calendar(context.Background(), "listing-1")
		for d := dates.New(2026, time.June, 10); d.Before(dates.New(2026, time.June, 13)); d = d.AddDays(1) {
			if !cal.Available(d) {
				t.Fatalf("night %s should be open after cancel", d)
			}
		}
		if pay.refunds != 0 {
			t.Fatalf("unpaid booking must not trigger a refund")
		}
	})

	t.Run("inside the window the tourist is blocked", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", true)

		handler := newCancelHandler(env, &fakePayments{})
		handler.Now = func() time.Time { return dates.New(2026, time.June, 10).Time().Add(-2 * time.Hour) }
		_, err := handler.Handle(context.Background(), CancelBookingCommand{
			Session:   touristSession("tourist-1"),
			BookingID: "bk-1",
			Reason:    "too late",
		})
		if !errors.Is(err, domainbooking.ErrCancellationWindowPassed) {
			t.Fatalf("expected ErrCancellationWindowPassed, got %v", err)
		}
	})

	t.Run("host cancel works inside the window but needs a reason", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", true)

		handler := newCancelHandler(env, &fakePayments{})
		handler.Now = func() time.Time { return dates.New(2026, time.June, 10).Time().Add(-2 * time.Hour) }

		if _, err := handler.Handle(context.Background(), CancelBookingCommand{Session: hostSession("host-1"), BookingID: "bk-1"}); !errors.Is(err, domainbooking.ErrReasonRequired) {
			t.Fatalf("expected ErrReasonRequired, got %v", err)
		}
		if _, err := handler.Handle(context.Background(), CancelBookingCommand{Session: hostSession("host-1"), BookingID: "bk-1", Reason: "emergency"}); err != nil {
			t.Fatalf("host cancel: %v", err)
		}
	})

	t.Run("strangers are rejected", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", true)

		_, err := newCancelHandler(env, &fakePayments{}).Handle(context.Background(), CancelBookingCommand{
			Session:   touristSession("tourist-9"),
			BookingID: "bk-1",
			Reason:    "not mine",
		})
		if !errors.Is(err, ErrNotBookingParty) {
			t.Fatalf("expected ErrNotBookingParty, got %v", err)
		}
	})

	t.Run("paid booking triggers exactly one refund", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", true)

		paidHandler := &PaymentConfirmedHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return handlerNow }}
		if _, err := paidHandler.Handle(context.Background(), PaymentConfirmedCommand{BookingID: "bk-1"}); err != nil {
			t.Fatalf("mark paid: %v", err)
		}

		pay := &fakePayments{}
		if _, err := newCancelHandler(env, pay).Handle(context.Background(), CancelBookingCommand{
			Session:   touristSession("tourist-1"),
			BookingID: "bk-1",
			Reason:    "refund me",
		}); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if pay.refunds != 1 {
			t.Fatalf("refunds = %d, want exactly 1", pay.refunds)
		}
	})

	t.Run("failed refund leaves the booking and calendar untouched", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", true)

		paidHandler := &PaymentConfirmedHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return handlerNow }}
		if _, err := paidHandler.Handle(context.Background(), PaymentConfirmedCommand{BookingID: "bk-1"}); err != nil {
			t.Fatalf("mark paid: %v", err)
		}

		pay := &fakePayments{fail: true}
		if _, err := newCancelHandler(env, pay).Handle(context.Background(), CancelBookingCommand{
			Session:   adminSession("admin-1"),
			BookingID: "bk-1",
			Reason:    "chargeback",
		}); err == nil {
			t.Fatalf("expected the refund failure to surface")
		}
		if pay.refunds != 1 {
			t.Fatalf("refunds = %d, want exactly 1", pay.refunds)
		}

		bk, err := env.bookings.ByID(context.Background(), "bk-1")
		if err != nil {
			t.Fatalf("reload booking: %v", err)
		}
		if bk.Status != domainbooking.StatusConfirmed {
			t.Fatalf("status = %s, want confirmed after a rejected cancel", bk.Status)
		}
		cal, _ := env.calendars.Calendar(context.Background(), "listing-1")
		if cal.Available(dates.New(2026, time.June, 10)) {
			t.Fatalf("night must stay held after a rejected cancel")
		}
	})
}

func TestCompleteBooking(t *testing.T) {
	t.Parallel()

	env := newBookingEnv(t)
	env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
	env.seedBooking(t, "bk-1", true)

	handler := &CompleteBookingHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return handlerNow }}

	t.Run("before checkout", func(t *testing.T) {
		if _, err := handler.Handle(context.Background(), CompleteBookingCommand{Session: hostSession("host-1"), BookingID: "bk-1"}); !errors.Is(err, domainbooking.ErrStayNotFinished) {
			t.Fatalf("expected ErrStayNotFinished, got %v", err)
		}
	})

	t.Run("after checkout", func(t *testing.T) {
		handler.Now = func() time.Time { return dates.New(2026, time.June, 14).Time() }
		res, err := handler.Handle(context.Background(), CompleteBookingCommand{Session: hostSession("host-1"), BookingID: "bk-1"})
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if res.Status != string(domainbooking.StatusCompleted) {
			t.Fatalf("status = %s, want completed", res.Status)
		}
	})
}

func TestPaymentConfirmed(t *testing.T) {
	t.Parallel()

	t.Run("paid pending booking is confirmed and dates held", func(t *testing.T) {
		env := newBookingEnv(t)
		env.addListing(t, "listing-1", domainlistings.ListingActive, 4)
		env.seedBooking(t, "bk-1", false)

		handler := &PaymentConfirmedHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return handlerNow }}
		res, err := handler.Handle(context.Background(), PaymentConfirmedCommand{BookingID: "bk-1"})
		if err != nil {
			t.Fatalf("payment confirmed: %v", err)
		}
		if res.Status != string(domainbooking.StatusConfirmed) {
			t.Fatalf("status = %s, want confirmed", res.Status)
		}
		if res.PaymentStatus != string(domainbooking.PaymentPaid) {
			t.Fatalf("payment = %s, want paid", res.PaymentStatus)
		}
		cal, _ := env.calendars.Calendar(context.Background(), "listing-1")
		if cal.Available(dates.New(2026, time.June, 10)) {
			t.Fatalf("paid booking must hold its nights")
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		env := newBookingEnv(t)
		handler := &PaymentConfirmedHandler{UoWFactory: env.factory, Outbox: env.outbox, Now: func() time.Time { return handlerNow }}
		if _, err := handler.Handle(context.Background(), PaymentConfirmedCommand{BookingID: "missing"}); !errors.Is(err, domainbooking.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
