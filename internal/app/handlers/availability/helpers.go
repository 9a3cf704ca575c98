package availability

import (
	"context"
	"time"

	"gramstay/internal/app/uow"
)

func beginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, false, nil
	}
	if factory == nil {
		return nil, ctx, false, ErrUnitOfWorkRequired
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, false, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	return unit, uow.ContextWithUnitOfWork(execCtx, unit), true, nil
}

func nowOrDefault(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
