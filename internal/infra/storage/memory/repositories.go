package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	domainlistings "gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
)

// ListingRepository is an in-memory implementation for dev and tests.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlistings.ListingID]*domainlistings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlistings.ListingID]*domainlistings.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, domainlistings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[listing.ID]; ok && current.Version != listing.Version {
		return domainavailability.ErrConcurrentUpdate
	}
	stored := cloneListing(listing)
	stored.Version++
	r.items[listing.ID] = stored
	listing.Version = stored.Version
	return nil
}

// Search filters and sorts the whole map; fine at in-memory scale.
func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlistings.Listing, 0, len(r.items))
	for _, listing := range r.items {
		select {
		case <-ctx.Done():
			return domainlistings.SearchResult{}, ctx.Err()
		default:
		}

		if opts.OnlyActive && listing.State != domainlistings.ListingActive {
			continue
		}
		if opts.Host != "" && listing.Host != opts.Host {
			continue
		}
		if len(opts.States) > 0 && !stateIncluded(listing.State, opts.States) {
			continue
		}
		if opts.StateRegion != "" && !strings.EqualFold(listing.Location.State, opts.StateRegion) {
			continue
		}
		if opts.District != "" && !strings.EqualFold(listing.Location.District, opts.District) {
			continue
		}
		if opts.Query != "" && !matchQuery(listing, opts.Query) {
			continue
		}
		if opts.MinGuests > 0 && listing.MaxGuests < opts.MinGuests {
			continue
		}
		if opts.PriceMin > 0 && listing.NightlyRate.Amount < opts.PriceMin {
			continue
		}
		if opts.PriceMax > 0 && listing.NightlyRate.Amount > opts.PriceMax {
			continue
		}
		if !tokensMatch(listing.Amenities, opts.Amenities) {
			continue
		}
		if len(opts.PropertyTypes) > 0 && !typeIncluded(listing.PropertyType, opts.PropertyTypes) {
			continue
		}
		matches = append(matches, listing)
	}

	sort.Slice(matches, func(i, j int) bool {
		switch opts.Sort {
		case domainlistings.SortByPriceDesc:
			if matches[i].NightlyRate.Amount == matches[j].NightlyRate.Amount {
				return matches[i].CreatedAt.After(matches[j].CreatedAt)
			}
			return matches[i].NightlyRate.Amount > matches[j].NightlyRate.Amount
		case domainlistings.SortByPriceAsc:
			if matches[i].NightlyRate.Amount == matches[j].NightlyRate.Amount {
				return matches[i].CreatedAt.After(matches[j].CreatedAt)
			}
			return matches[i].NightlyRate.Amount < matches[j].NightlyRate.Amount
		default:
			if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
				return matches[i].ID < matches[j].ID
			}
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	page := make([]*domainlistings.Listing, 0, end-start)
	for _, l := range matches[start:end] {
		page = append(page, cloneListing(l))
	}
	return domainlistings.SearchResult{Items: page, Total: total}, nil
}

func matchQuery(listing *domainlistings.Listing, needle string) bool {
	full := strings.ToLower(strings.Join([]string{
		listing.Title,
		listing.Description,
		listing.Location.Village,
		listing.Location.District,
		listing.Location.State,
	}, " "))
	return strings.Contains(full, needle)
}

func tokensMatch(values []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	index := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(strings.ToLower(value))
		if value != "" {
			index[value] = struct{}{}
		}
	}
	for _, token := range required {
		if _, ok := index[token]; !ok {
			return false
		}
	}
	return true
}

func typeIncluded(value domainlistings.PropertyType, allowed []domainlistings.PropertyType) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}

func stateIncluded(state domainlistings.ListingState, allowed []domainlistings.ListingState) bool {
	for _, candidate := range allowed {
		if state == candidate {
			return true
		}
	}
	return false
}

func cloneListing(l *domainlistings.Listing) *domainlistings.Listing {
	out := *l
	out.Amenities = append([]string(nil), l.Amenities...)
	out.Photos = append([]string(nil), l.Photos...)
	out.ClearEvents()
	return &out
}

// AvailabilityRepository keeps calendars in memory. Save performs an
// optimistic version check so two overlapping reservations cannot both
// land: the loser gets ErrConcurrentUpdate.
type AvailabilityRepository struct {
	mu        sync.Mutex
	calendars map[domainlistings.ListingID]*domainavailability.Calendar
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{
		calendars: make(map[domainlistings.ListingID]*domainavailability.Calendar),
	}
}

// Calendar retrieves a snapshot, lazily creating an empty calendar.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlistings.ListingID) (*domainavailability.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cal, ok := r.calendars[id]; ok {
		return cloneCalendar(cal), nil
	}
	cal := domainavailability.NewCalendar(id)
	r.calendars[id] = cal
	return cloneCalendar(cal), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.calendars[calendar.ListingID]; ok && current.Version != calendar.Version {
		return domainavailability.ErrConcurrentUpdate
	}
	stored := cloneCalendar(calendar)
	stored.Version++
	r.calendars[calendar.ListingID] = stored
	calendar.Version = stored.Version
	return nil
}

func cloneCalendar(c *domainavailability.Calendar) *domainavailability.Calendar {
	out := *c
	out.Days = make(map[dates.Date]bool, len(c.Days))
	for d, v := range c.Days {
		out.Days[d] = v
	}
	out.ClearEvents()
	return &out
}

// BookingRepository stores bookings in memory with the same optimistic
// version discipline as the calendars.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[booking.ID]; ok && current.Version != booking.Version {
		return domainavailability.ErrConcurrentUpdate
	}
	stored := cloneBooking(booking)
	stored.Version++
	r.items[booking.ID] = stored
	booking.Version = stored.Version
	return nil
}

func (r *BookingRepository) List(ctx context.Context, params domainbooking.ListParams) ([]*domainbooking.Booking, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if params.TouristID != "" && booking.TouristID != params.TouristID {
			continue
		}
		if params.HostID != "" && booking.HostID != params.HostID {
			continue
		}
		if params.ListingID != "" && booking.ListingID != params.ListingID {
			continue
		}
		if params.Status != "" && booking.Status != params.Status {
			continue
		}
		matches = append(matches, booking)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start := params.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if params.Limit > 0 && start+params.Limit < total {
		end = start + params.Limit
	}

	page := make([]*domainbooking.Booking, 0, end-start)
	for _, b := range matches[start:end] {
		page = append(page, cloneBooking(b))
	}
	return page, total, nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	out := *b
	out.ClearEvents()
	return &out
}

var (
	_ domainlistings.Repository     = (*ListingRepository)(nil)
	_ domainavailability.Repository = (*AvailabilityRepository)(nil)
	_ domainbooking.Repository      = (*BookingRepository)(nil)
)
