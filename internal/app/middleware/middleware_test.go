package middleware_test

import (
	"context"
	"errors"
	"testing"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/middleware"
	"gramstay/internal/app/uow"
	domainauth "gramstay/internal/domain/auth"
	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	domainuser "gramstay/internal/domain/user"
	"gramstay/internal/infra/storage/memory"
)

type echoCommand struct {
	ID    string
	IdKey string
	Value string
}

func (c echoCommand) Key() string            { return "test.echo" }
func (c echoCommand) IdempotencyKey() string { return c.IdKey }
func (c echoCommand) ResultPrototype() any   { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
}

type plainCommand struct{ Value string }

func (c plainCommand) Key() string { return "test.plain" }

type countingHandler struct {
	calls int
	fail  error
}

func (h *countingHandler) Handle(ctx context.Context, cmd echoCommand) (*echoResult, error) {
	h.calls++
	if h.fail != nil {
		return nil, h.fail
	}
	return &echoResult{Value: cmd.Value}, nil
}

func TestIdempotency(t *testing.T) {
	t.Parallel()

	newBus := func(handler *countingHandler) commands.Bus {
		base := commands.NewInMemoryBus()
		commands.RegisterHandler[echoCommand, *echoResult](base, echoCommand{}.Key(), handler)
		return middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(), middleware.JSONResultCodec{}))
	}

	t.Run("replays the stored result", func(t *testing.T) {
		handler := &countingHandler{}
		bus := newBus(handler)

		first, err := bus.Dispatch(context.Background(), echoCommand{ID: "c1", IdKey: "key-1", Value: "hello"})
		if err != nil {
			t.Fatalf("first dispatch: %v", err)
		}
		second, err := bus.Dispatch(context.Background(), echoCommand{ID: "c2", IdKey: "key-1", Value: "changed"})
		if err != nil {
			t.Fatalf("second dispatch: %v", err)
		}
		if handler.calls != 1 {
			t.Fatalf("handler ran %d times, want 1", handler.calls)
		}
		if first.(*echoResult).Value != "hello" || second.(*echoResult).Value != "hello" {
			t.Fatalf("replay returned %v, want the original result", second)
		}
	})

	t.Run("replays the stored error", func(t *testing.T) {
		handler := &countingHandler{fail: errors.New("boom")}
		bus := newBus(handler)

		if _, err := bus.Dispatch(context.Background(), echoCommand{IdKey: "key-err"}); err == nil {
			t.Fatalf("expected error")
		}
		handler.fail = nil
		if _, err := bus.Dispatch(context.Background(), echoCommand{IdKey: "key-err"}); err == nil || err.Error() != "boom" {
			t.Fatalf("expected replayed error, got %v", err)
		}
		if handler.calls != 1 {
			t.Fatalf("handler ran %d times, want 1", handler.calls)
		}
	})

	t.Run("no key means no dedup", func(t *testing.T) {
		handler := &countingHandler{}
		bus := newBus(handler)

		for i := 0; i < 2; i++ {
			if _, err := bus.Dispatch(context.Background(), echoCommand{Value: "x"}); err != nil {
				t.Fatalf("dispatch %d: %v", i, err)
			}
		}
		if handler.calls != 2 {
			t.Fatalf("handler ran %d times, want 2", handler.calls)
		}
	})

	t.Run("commands without the contract pass through", func(t *testing.T) {
		base := commands.NewInMemoryBus()
		calls := 0
		base.RegisterRaw(plainCommand{}.Key(), func(ctx context.Context, cmd commands.Command) (any, error) {
			calls++
			return nil, nil
		})
		bus := middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(), nil))
		for i := 0; i < 2; i++ {
			if _, err := bus.Dispatch(context.Background(), plainCommand{}); err != nil {
				t.Fatalf("dispatch %d: %v", i, err)
			}
		}
		if calls != 2 {
			t.Fatalf("handler ran %d times, want 2", calls)
		}
	})
}

type recordingUnit struct {
	commits   int
	rollbacks int
}

func (u *recordingUnit) Listings() domainlistings.Repository         { return nil }
func (u *recordingUnit) Availability() domainavailability.Repository { return nil }
func (u *recordingUnit) Bookings() domainbooking.Repository          { return nil }
func (u *recordingUnit) Users() domainuser.Repository                { return nil }
func (u *recordingUnit) Sessions() domainauth.SessionStore           { return nil }
func (u *recordingUnit) Commit(ctx context.Context) error            { u.commits++; return nil }
func (u *recordingUnit) Rollback(ctx context.Context) error          { u.rollbacks++; return nil }

type recordingFactory struct {
	unit *recordingUnit
}

func (f *recordingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

type sessionMarkerKey struct{}

// injectingUnit mimics storage whose repositories only see the transaction
// through a context value, the way the Mongo session travels.
type injectingUnit struct {
	recordingUnit
}

func (u *injectingUnit) InjectContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, sessionMarkerKey{}, u)
}

type injectingFactory struct {
	unit *injectingUnit
}

func (f *injectingFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

func TestTransaction(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		factory := &recordingFactory{unit: &recordingUnit{}}
		base := commands.NewInMemoryBus()
		base.RegisterRaw(plainCommand{}.Key(), func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, ok := uow.FromContext(ctx); !ok {
				t.Fatalf("unit of work missing from handler context")
			}
			return "ok", nil
		})
		bus := middleware.ChainCommands(base, middleware.Transaction(factory, nil))

		if _, err := bus.Dispatch(context.Background(), plainCommand{}); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if factory.unit.commits != 1 || factory.unit.rollbacks != 0 {
			t.Fatalf("commits/rollbacks = %d/%d, want 1/0", factory.unit.commits, factory.unit.rollbacks)
		}
	})

	t.Run("handlers run on the unit's injected context", func(t *testing.T) {
		factory := &injectingFactory{unit: &injectingUnit{}}
		base := commands.NewInMemoryBus()
		base.RegisterRaw(plainCommand{}.Key(), func(ctx context.Context, cmd commands.Command) (any, error) {
			if ctx.Value(sessionMarkerKey{}) != factory.unit {
				t.Fatalf("handler context lost the storage session")
			}
			return "ok", nil
		})
		bus := middleware.ChainCommands(base, middleware.Transaction(factory, nil))

		if _, err := bus.Dispatch(context.Background(), plainCommand{}); err != nil {
			t.Fatalf("dispatch: %v", err)
		}
		if factory.unit.commits != 1 {
			t.Fatalf("commits = %d, want 1", factory.unit.commits)
		}
	})

	t.Run("rolls back on handler error", func(t *testing.T) {
		factory := &recordingFactory{unit: &recordingUnit{}}
		base := commands.NewInMemoryBus()
		base.RegisterRaw(plainCommand{}.Key(), func(ctx context.Context, cmd commands.Command) (any, error) {
			return nil, errors.New("boom")
		})
		bus := middleware.ChainCommands(base, middleware.Transaction(factory, nil))

		if _, err := bus.Dispatch(context.Background(), plainCommand{}); err == nil {
			t.Fatalf("expected error")
		}
		if factory.unit.commits != 0 || factory.unit.rollbacks != 1 {
			t.Fatalf("commits/rollbacks = %d/%d, want 0/1", factory.unit.commits, factory.unit.rollbacks)
		}
	})
}

func TestOutboxFlush(t *testing.T) {
	t.Parallel()

	box := memory.NewOutbox()
	base := commands.NewInMemoryBus()
	base.RegisterRaw(plainCommand{}.Key(), func(ctx context.Context, cmd commands.Command) (any, error) {
		return "ok", nil
	})
	bus := middleware.ChainCommands(base, middleware.OutboxFlush(box))
	if _, err := bus.Dispatch(context.Background(), plainCommand{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}
