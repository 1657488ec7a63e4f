// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/sagov/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Collection = "events"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var byWhen = bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}}

// Create validates the date and time formats and inserts the event.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.CreatedAt = time.Now().UTC()

	if e.Title == "" {
		return models.Event{}, mongo.CommandError{Message: "title is required"}
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return models.Event{}, mongo.CommandError{Message: "date must be YYYY-MM-DD"}
	}
	if _, err := time.Parse(TimeLayout, e.Time); err != nil {
		return models.Event{}, mongo.CommandError{Message: "time must be HH:MM"}
	}

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// List returns every event in chronological order.
func (s *Store) List(ctx context.Context) ([]models.Event, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(byWhen))
}

// Upcoming returns at most limit events dated on or after from.
func (s *Store) Upcoming(ctx context.Context, from time.Time, limit int64) ([]models.Event, error) {
	opts := options.Find().SetSort(byWhen)
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return s.find(ctx, bson.M{"date": bson.M{"$gte": from.Format(DateLayout)}}, opts)
}

// CountUpcoming counts events dated on or after from.
func (s *Store) CountUpcoming(ctx context.Context, from time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"date": bson.M{"$gte": from.Format(DateLayout)}})
}

// Delete removes an event by ID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
