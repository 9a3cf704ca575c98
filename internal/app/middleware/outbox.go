package middleware

import (
	"context"

	"gramstay/internal/app/commands"
	"gramstay/internal/app/outbox"
)

// OutboxFlush flushes buffered outbox records once a command succeeds. Stores
// that persist records transactionally implement Flush as a no-op.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if box != nil {
				if err := box.Flush(ctx); err != nil {
					return nil, err
				}
			}
			return res, nil
		})
	}
}
