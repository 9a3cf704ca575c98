package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"gramstay/internal/domain/shared/events"
	"gramstay/internal/domain/shared/money"
)

var (
	ErrIDRequired       = errors.New("listings: id is required")
	ErrHostRequired     = errors.New("listings: host is required")
	ErrTitleRequired    = errors.New("listings: title is required")
	ErrGuestsLimit      = errors.New("listings: max guests must be at least 1")
	ErrNightlyRate      = errors.New("listings: nightly rate must be positive")
	ErrInvalidType      = errors.New("listings: unknown property type")
	ErrLocationRequired = errors.New("listings: village and state must be provided when submitting")
	ErrInvalidState     = errors.New("listings: invalid state transition")
	ErrNotFound         = errors.New("listings: not found")
)

type ListingID string
type HostID string

type ListingState string

const (
	ListingDraft         ListingState = "DRAFT"
	ListingPendingReview ListingState = "PENDING_REVIEW"
	ListingActive        ListingState = "ACTIVE"
	ListingRejected      ListingState = "REJECTED"
	ListingSuspended     ListingState = "SUSPENDED"
)

type PropertyType string

const (
	PropertyFarmstay     PropertyType = "farmstay"
	PropertyHomestay     PropertyType = "homestay"
	PropertyCottage      PropertyType = "cottage"
	PropertyEcoLodge     PropertyType = "eco_lodge"
	PropertyHeritageHome PropertyType = "heritage_home"
)

func (p PropertyType) Valid() bool {
	switch p {
	case PropertyFarmstay, PropertyHomestay, PropertyCottage, PropertyEcoLodge, PropertyHeritageHome:
		return true
	}
	return false
}

// Location places a listing in the rural geography guests search by.
type Location struct {
	Village  string
	District string
	State    string
	Lat      float64
	Lon      float64
}

func (l Location) Valid() bool {
	return strings.TrimSpace(l.Village) != "" && strings.TrimSpace(l.State) != ""
}

type Listing struct {
	ID           ListingID
	Host         HostID
	Title        string
	Description  string
	PropertyType PropertyType
	Location     Location
	Amenities    []string
	NightlyRate  money.Money
	MaxGuests    int
	Photos       []string
	State        ListingState
	RejectReason string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID           ListingID
	Host         HostID
	Title        string
	Description  string
	PropertyType PropertyType
	Location     Location
	Amenities    []string
	NightlyRate  money.Money
	MaxGuests    int
	Photos       []string
	Now          time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !params.PropertyType.Valid() {
		return nil, ErrInvalidType
	}
	if params.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	if params.NightlyRate.Amount <= 0 {
		return nil, ErrNightlyRate
	}
	now := params.Now.UTC()
	l := &Listing{
		ID:           params.ID,
		Host:         params.Host,
		Title:        strings.TrimSpace(params.Title),
		Description:  strings.TrimSpace(params.Description),
		PropertyType: params.PropertyType,
		Location:     params.Location,
		Amenities:    append([]string(nil), params.Amenities...),
		NightlyRate:  params.NightlyRate,
		MaxGuests:    params.MaxGuests,
		Photos:       append([]string(nil), params.Photos...),
		State:        ListingDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	l.Record(ListingCreated{ListingID: l.ID, HostID: l.Host, At: now})
	return l, nil
}

// SubmitForReview moves a draft (or rejected) listing into the admin queue.
func (l *Listing) SubmitForReview(now time.Time) error {
	if l.State != ListingDraft && l.State != ListingRejected {
		return ErrInvalidState
	}
	if !l.Location.Valid() {
		return ErrLocationRequired
	}
	l.State = ListingPendingReview
	l.RejectReason = ""
	l.UpdatedAt = now.UTC()
	l.Record(ListingSubmitted{ListingID: l.ID, HostID: l.Host, At: l.UpdatedAt})
	return nil
}

// Approve activates a listing awaiting review.
func (l *Listing) Approve(now time.Time) error {
	if l.State != ListingPendingReview {
		return ErrInvalidState
	}
	l.State = ListingActive
	l.UpdatedAt = now.UTC()
	l.Record(ListingApproved{ListingID: l.ID, HostID: l.Host, At: l.UpdatedAt})
	return nil
}

// Reject returns a listing to its host with a reason.
func (l *Listing) Reject(reason string, now time.Time) error {
	if l.State != ListingPendingReview {
		return ErrInvalidState
	}
	l.State = ListingRejected
	l.RejectReason = strings.TrimSpace(reason)
	l.UpdatedAt = now.UTC()
	l.Record(ListingRejectedEvent{ListingID: l.ID, Reason: l.RejectReason, At: l.UpdatedAt})
	return nil
}

// Suspend soft-deactivates an active listing. Existing bookings keep their
// reference to it; the listing is never deleted.
func (l *Listing) Suspend(reason string, now time.Time) error {
	if l.State != ListingActive {
		return ErrInvalidState
	}
	l.State = ListingSuspended
	l.UpdatedAt = now.UTC()
	l.Record(ListingSuspendedEvent{ListingID: l.ID, Reason: reason, At: l.UpdatedAt})
	return nil
}

type UpdateParams struct {
	Title        string
	Description  string
	PropertyType PropertyType
	Location     Location
	Amenities    []string
	NightlyRate  money.Money
	MaxGuests    int
	Photos       []string
	Now          time.Time
}

func (l *Listing) Update(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if !params.PropertyType.Valid() {
		return ErrInvalidType
	}
	if params.MaxGuests < 1 {
		return ErrGuestsLimit
	}
	if params.NightlyRate.Amount <= 0 {
		return ErrNightlyRate
	}
	l.Title = strings.TrimSpace(params.Title)
	l.Description = strings.TrimSpace(params.Description)
	l.PropertyType = params.PropertyType
	l.Location = params.Location
	l.Amenities = append([]string(nil), params.Amenities...)
	l.NightlyRate = params.NightlyRate
	l.MaxGuests = params.MaxGuests
	l.Photos = append([]string(nil), params.Photos...)
	l.UpdatedAt = params.Now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) AddPhoto(url string, now time.Time) {
	l.Photos = append(l.Photos, url)
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
}
