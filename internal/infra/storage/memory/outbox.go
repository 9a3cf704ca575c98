package memory

import (
	"context"
	"sync"

	appoutbox "gramstay/internal/app/outbox"
)

// Outbox buffers event records in memory until flushed. In memory mode the
// flush hands them straight to an optional publisher.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord

	Publish func(ctx context.Context, record appoutbox.EventRecord) error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	pending := o.records
	o.records = nil
	o.mu.Unlock()

	if o.Publish == nil {
		return nil
	}
	for _, rec := range pending {
		if err := o.Publish(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns a snapshot of unflushed records, for tests.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.records))
	copy(out, o.records)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
