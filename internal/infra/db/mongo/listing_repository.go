package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "gramstay/internal/domain/availability"
	domainlistings "gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/money"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	col := db.Collection("agg_listing")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "host_id", Value: 1}},
	})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "state", Value: 1}, {Key: "location.state", Value: 1}, {Key: "location.district", Value: 1}},
	})
	return &ListingRepository{col: col}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	doc := newListingDocument(l)
	filter := bson.M{"_id": doc.ID, "version": l.Version}
	doc.Version = l.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainavailability.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainavailability.ErrConcurrentUpdate
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	opts := params.Normalized()

	filter := bson.M{}
	if opts.OnlyActive {
		filter["state"] = string(domainlistings.ListingActive)
	} else if len(opts.States) > 0 {
		states := make([]string, 0, len(opts.States))
		for _, s := range opts.States {
			states = append(states, string(s))
		}
		filter["state"] = bson.M{"$in": states}
	}
	if opts.Host != "" {
		filter["host_id"] = string(opts.Host)
	}
	if opts.StateRegion != "" {
		filter["location.state"] = caseInsensitive(opts.StateRegion)
	}
	if opts.District != "" {
		filter["location.district"] = caseInsensitive(opts.District)
	}
	if opts.Query != "" {
		filter["$or"] = bson.A{
			bson.M{"title": caseInsensitive(opts.Query)},
			bson.M{"description": caseInsensitive(opts.Query)},
			bson.M{"location.village": caseInsensitive(opts.Query)},
		}
	}
	if opts.MinGuests > 0 {
		filter["max_guests"] = bson.M{"$gte": opts.MinGuests}
	}
	price := bson.M{}
	if opts.PriceMin > 0 {
		price["$gte"] = opts.PriceMin
	}
	if opts.PriceMax > 0 {
		price["$lte"] = opts.PriceMax
	}
	if len(price) > 0 {
		filter["nightly_rate"] = price
	}
	if len(opts.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": opts.Amenities}
	}
	if len(opts.PropertyTypes) > 0 {
		types := make([]string, 0, len(opts.PropertyTypes))
		for _, t := range opts.PropertyTypes {
			types = append(types, string(t))
		}
		filter["property_type"] = bson.M{"$in": types}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}

	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	switch opts.Sort {
	case domainlistings.SortByPriceAsc:
		sort = bson.D{{Key: "nightly_rate", Value: 1}, {Key: "_id", Value: 1}}
	case domainlistings.SortByPriceDesc:
		sort = bson.D{{Key: "nightly_rate", Value: -1}, {Key: "_id", Value: 1}}
	}

	findOpts := options.Find().SetSort(sort).SetSkip(int64(opts.Offset)).SetLimit(int64(opts.Limit))
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer cursor.Close(ctx)

	var items []*domainlistings.Listing
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return domainlistings.SearchResult{}, err
		}
		items = append(items, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: int(total)}, nil
}

func caseInsensitive(value string) bson.M {
	return bson.M{"$regex": value, "$options": "i"}
}

type listingDocument struct {
	ID           string           `bson:"_id"`
	HostID       string           `bson:"host_id"`
	Title        string           `bson:"title"`
	Description  string           `bson:"description"`
	PropertyType string           `bson:"property_type"`
	Location     locationDocument `bson:"location"`
	Amenities    []string         `bson:"amenities"`
	NightlyRate  int64            `bson:"nightly_rate"`
	Currency     string           `bson:"currency"`
	MaxGuests    int              `bson:"max_guests"`
	Photos       []string         `bson:"photos"`
	State        string           `bson:"state"`
	RejectReason string           `bson:"reject_reason,omitempty"`
	CreatedAt    time.Time        `bson:"created_at"`
	UpdatedAt    time.Time        `bson:"updated_at"`
	Version      int64            `bson:"version"`
}

type locationDocument struct {
	Village  string  `bson:"village"`
	District string  `bson:"district"`
	State    string  `bson:"state"`
	Lat      float64 `bson:"lat,omitempty"`
	Lon      float64 `bson:"lon,omitempty"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	return listingDocument{
		ID:           string(l.ID),
		HostID:       string(l.Host),
		Title:        l.Title,
		Description:  l.Description,
		PropertyType: string(l.PropertyType),
		Location: locationDocument{
			Village:  l.Location.Village,
			District: l.Location.District,
			State:    l.Location.State,
			Lat:      l.Location.Lat,
			Lon:      l.Location.Lon,
		},
		Amenities:    l.Amenities,
		NightlyRate:  l.NightlyRate.Amount,
		Currency:     l.NightlyRate.Currency,
		MaxGuests:    l.MaxGuests,
		Photos:       l.Photos,
		State:        string(l.State),
		RejectReason: l.RejectReason,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
		Version:      l.Version,
	}
}

func (d listingDocument) toAggregate() *domainlistings.Listing {
	cur := d.Currency
	if cur == "" {
		cur = money.INR
	}
	return &domainlistings.Listing{
		ID:           domainlistings.ListingID(d.ID),
		Host:         domainlistings.HostID(d.HostID),
		Title:        d.Title,
		Description:  d.Description,
		PropertyType: domainlistings.PropertyType(d.PropertyType),
		Location: domainlistings.Location{
			Village:  d.Location.Village,
			District: d.Location.District,
			State:    d.Location.State,
			Lat:      d.Location.Lat,
			Lon:      d.Location.Lon,
		},
		Amenities:    d.Amenities,
		NightlyRate:  money.Must(d.NightlyRate, cur),
		MaxGuests:    d.MaxGuests,
		Photos:       d.Photos,
		State:        domainlistings.ListingState(d.State),
		RejectReason: d.RejectReason,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
		Version:      d.Version,
	}
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
