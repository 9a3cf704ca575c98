package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "gramstay/internal/domain/availability"
	domainbooking "gramstay/internal/domain/booking"
	"gramstay/internal/domain/listings"
	domainpricing "gramstay/internal/domain/pricing"
	"gramstay/internal/domain/shared/dates"
	"gramstay/internal/domain/shared/money"
)

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "tourist_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

// Save upserts against the loaded version; a zero match means someone else
// committed first.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) List(ctx context.Context, params domainbooking.ListParams) ([]*domainbooking.Booking, int, error) {
	filter := bson.M{}
	if params.TouristID != "" {
		filter["tourist_id"] = params.TouristID
	}
	if params.HostID != "" {
		filter["host_id"] = params.HostID
	}
	if params.ListingID != "" {
		filter["listing_id"] = string(params.ListingID)
	}
	if params.Status != "" {
		filter["status"] = string(params.Status)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if params.Offset > 0 {
		opts = opts.SetSkip(int64(params.Offset))
	}
	if params.Limit > 0 {
		opts = opts.SetLimit(int64(params.Limit))
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, err
		}
		b, err := doc.toAggregate()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

type bookingDocument struct {
	ID              string        `bson:"_id"`
	Reference       string        `bson:"reference"`
	ListingID       string        `bson:"listing_id"`
	TouristID       string        `bson:"tourist_id"`
	HostID          string        `bson:"host_id"`
	CheckIn         string        `bson:"check_in"`
	CheckOut        string        `bson:"check_out"`
	Guests          int           `bson:"guests"`
	SpecialRequests string        `bson:"special_requests,omitempty"`
	Price           priceDocument `bson:"price"`
	Status          string        `bson:"status"`
	PaymentStatus   string        `bson:"payment_status"`
	CancelReason    string        `bson:"cancel_reason,omitempty"`
	CreatedAt       time.Time     `bson:"created_at"`
	UpdatedAt       time.Time     `bson:"updated_at"`
	Version         int64         `bson:"version"`
}

type priceDocument struct {
	Nights                int    `bson:"nights"`
	Currency              string `bson:"currency"`
	NightlyRate           int64  `bson:"nightly_rate"`
	Base                  int64  `bson:"base"`
	PlatformFee           int64  `bson:"platform_fee"`
	CommunityContribution int64  `bson:"community_contribution"`
	Total                 int64  `bson:"total"`
	HostEarnings          int64  `bson:"host_earnings"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:              string(b.ID),
		Reference:       b.Reference,
		ListingID:       string(b.ListingID),
		TouristID:       b.TouristID,
		HostID:          b.HostID,
		CheckIn:         b.Range.CheckIn.String(),
		CheckOut:        b.Range.CheckOut.String(),
		Guests:          b.Guests,
		SpecialRequests: b.SpecialRequests,
		Price:           newPriceDocument(b.Price),
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		CancelReason:    b.CancelReason,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		Version:         b.Version,
	}
}

func newPriceDocument(p domainpricing.Breakdown) priceDocument {
	return priceDocument{
		Nights:                p.Nights,
		Currency:              p.Base.Currency,
		NightlyRate:           p.NightlyRate.Amount,
		Base:                  p.Base.Amount,
		PlatformFee:           p.PlatformFee.Amount,
		CommunityContribution: p.CommunityContribution.Amount,
		Total:                 p.Total.Amount,
		HostEarnings:          p.HostEarnings.Amount,
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	checkIn, err := dates.Parse(d.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := dates.Parse(d.CheckOut)
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:              domainbooking.BookingID(d.ID),
		Reference:       d.Reference,
		ListingID:       listings.ListingID(d.ListingID),
		TouristID:       d.TouristID,
		HostID:          d.HostID,
		Range:           dates.Range{CheckIn: checkIn, CheckOut: checkOut},
		Guests:          d.Guests,
		SpecialRequests: d.SpecialRequests,
		Price:           d.Price.toBreakdown(),
		Status:          domainbooking.Status(d.Status),
		PaymentStatus:   domainbooking.PaymentStatus(d.PaymentStatus),
		CancelReason:    d.CancelReason,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
		Version:         d.Version,
	}, nil
}

func (d priceDocument) toBreakdown() domainpricing.Breakdown {
	cur := d.Currency
	if cur == "" {
		cur = money.INR
	}
	return domainpricing.Breakdown{
		Nights:                d.Nights,
		NightlyRate:           money.Must(d.NightlyRate, cur),
		Base:                  money.Must(d.Base, cur),
		PlatformFee:           money.Must(d.PlatformFee, cur),
		CommunityContribution: money.Must(d.CommunityContribution, cur),
		Total:                 money.Must(d.Total, cur),
		HostEarnings:          money.Must(d.HostEarnings, cur),
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
