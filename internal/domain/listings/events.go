package listings

import "time"

type ListingCreated struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e ListingCreated) EventName() string     { return "listing.created" }
func (e ListingCreated) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreated) OccurredAt() time.Time { return e.At }

type ListingSubmitted struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e ListingSubmitted) EventName() string     { return "listing.submitted" }
func (e ListingSubmitted) AggregateID() string   { return string(e.ListingID) }
func (e ListingSubmitted) OccurredAt() time.Time { return e.At }

type ListingApproved struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e ListingApproved) EventName() string     { return "listing.approved" }
func (e ListingApproved) AggregateID() string   { return string(e.ListingID) }
func (e ListingApproved) OccurredAt() time.Time { return e.At }

type ListingRejectedEvent struct {
	ListingID ListingID
	Reason    string
	At        time.Time
}

func (e ListingRejectedEvent) EventName() string     { return "listing.rejected" }
func (e ListingRejectedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingRejectedEvent) OccurredAt() time.Time { return e.At }

type ListingSuspendedEvent struct {
	ListingID ListingID
	Reason    string
	At        time.Time
}

func (e ListingSuspendedEvent) EventName() string     { return "listing.suspended" }
func (e ListingSuspendedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingSuspendedEvent) OccurredAt() time.Time { return e.At }

type ListingUpdated struct {
	ListingID ListingID
	At        time.Time
}

func (e ListingUpdated) EventName() string     { return "listing.updated" }
func (e ListingUpdated) AggregateID() string   { return string(e.ListingID) }
func (e ListingUpdated) OccurredAt() time.Time { return e.At }
