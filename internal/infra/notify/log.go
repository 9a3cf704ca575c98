package notify

import (
	"context"
	"log/slog"

	"gramstay/internal/app/policies"
)

// LogNotifier writes notifications to the log. It stands in for email or
// SMS delivery in dev environments.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, userID string, subject, body string) error {
	if n.Logger != nil {
		n.Logger.Info("notify", "user_id", userID, "subject", subject, "body", body)
	}
	return nil
}

var _ policies.NotifierPort = LogNotifier{}
