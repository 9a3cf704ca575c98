package policies

import "context"

// NotifierPort delivers user-facing notifications (booking confirmations,
// cancellations). Implementations decide the channel; failures are logged,
// never surfaced to the guest flow.
type NotifierPort interface {
	Notify(ctx context.Context, userID string, subject, body string) error
}
