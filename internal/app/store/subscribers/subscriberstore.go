// internal/app/store/subscribers/subscriberstore.go
package subscriberstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/sagov/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "newsletter_subscribers"

// ErrAlreadySubscribed is returned when the Discord id is already on the list.
var ErrAlreadySubscribed = errors.New("this Discord id is already subscribed")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create adds a subscriber. The duplicate check is a read before the insert,
// so two concurrent sign-ups with the same id can both succeed.
func (s *Store) Create(ctx context.Context, sub models.NewsletterSubscriber) (models.NewsletterSubscriber, error) {
	sub.ID = primitive.NewObjectID()
	sub.DiscordID = strings.TrimSpace(sub.DiscordID)
	sub.Name = strings.TrimSpace(sub.Name)
	sub.SubscribedAt = time.Now().UTC()

	if sub.DiscordID == "" {
		return models.NewsletterSubscriber{}, mongo.CommandError{Message: "discord_id is required"}
	}
	if sub.Name == "" {
		return models.NewsletterSubscriber{}, mongo.CommandError{Message: "name is required"}
	}

	exists, err := s.ExistsByDiscordID(ctx, sub.DiscordID)
	if err != nil {
		return models.NewsletterSubscriber{}, err
	}
	if exists {
		return models.NewsletterSubscriber{}, ErrAlreadySubscribed
	}

	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.NewsletterSubscriber{}, err
	}
	return sub, nil
}

// ExistsByDiscordID reports whether any subscriber has discordID.
func (s *Store) ExistsByDiscordID(ctx context.Context, discordID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"discord_id": strings.TrimSpace(discordID)}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// List returns subscribers in subscription order, which is also the
// delivery order.
func (s *Store) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	opts := options.Find().SetSort(bson.D{{Key: "subscribed_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.NewsletterSubscriber
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID removes one subscriber.
func (s *Store) DeleteByID(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByDiscordID removes every subscriber with discordID and nothing else.
func (s *Store) DeleteByDiscordID(ctx context.Context, discordID string) (int64, error) {
	discordID = strings.TrimSpace(discordID)
	if discordID == "" {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"discord_id": discordID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of subscribers.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
