package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "gramstay/internal/domain/availability"
	"gramstay/internal/domain/listings"
	"gramstay/internal/domain/shared/dates"
)

type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection("agg_calendar")}
}

// Calendar loads a listing's calendar; a listing never written to reads as
// an empty, fully available calendar at version zero.
func (r *CalendarRepository) Calendar(ctx context.Context, id listings.ListingID) (*domainavailability.Calendar, error) {
	var doc calendarDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, err
	}
	return doc.toAggregate()
}

// Save is the write side of the overbooking guard: the version filter makes
// one of two racing reservations lose with ErrConcurrentUpdate.
func (r *CalendarRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	doc := newCalendarDocument(calendar)
	filter := bson.M{"_id": doc.ID, "version": calendar.Version}
	doc.Version = calendar.Version + 1
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
	calendar.Version = doc.Version
	return nil
}

type calendarDocument struct {
	ID      string          `bson:"_id"`
	Days    map[string]bool `bson:"days"`
	Version int64           `bson:"version"`
}

func newCalendarDocument(c *domainavailability.Calendar) calendarDocument {
	days := make(map[string]bool, len(c.Days))
	for d, v := range c.Days {
		days[d.String()] = v
	}
	return calendarDocument{ID: string(c.ListingID), Days: days, Version: c.Version}
}

func (d calendarDocument) toAggregate() (*domainavailability.Calendar, error) {
	cal := domainavailability.NewCalendar(listings.ListingID(d.ID))
	cal.Version = d.Version
	for raw, v := range d.Days {
		day, err := dates.Parse(raw)
		if err != nil {
			return nil, err
		}
		cal.Days[day] = v
	}
	return cal, nil
}

var _ domainavailability.Repository = (*CalendarRepository)(nil)
