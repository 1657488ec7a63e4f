// internal/app/store/discordconfig/discordconfigstore.go
package discordconfigstore

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

const Collection = "discord_config"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Current returns the most recently updated configuration. When no record
// exists it returns a zero DiscordConfig, which is disabled.
func (s *Store) Current(ctx context.Context) (models.DiscordConfig, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	var cfg models.DiscordConfig
	err := s.c.FindOne(ctx, bson.M{}, opts).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DiscordConfig{}, nil
	}
	if err != nil {
		return models.DiscordConfig{}, err
	}
	return cfg, nil
}

// Save records a new configuration, which becomes the current one.
// An empty token keeps the token of the current record so the form can be
// submitted without re-entering the secret.
func (s *Store) Save(ctx context.Context, cfg models.DiscordConfig) (models.DiscordConfig, error) {
	cfg.Token = strings.TrimSpace(cfg.Token)
	if cfg.Token == "" {
		cur, err := s.Current(ctx)
		if err != nil {
			return models.DiscordConfig{}, err
		}
		cfg.Token = cur.Token
	}
	if cfg.Enabled && cfg.Token == "" {
		return models.DiscordConfig{}, mongo.CommandError{Message: "a bot token is required to enable delivery"}
	}

	cfg.ID = primitive.NewObjectID()
	cfg.UpdatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, cfg); err != nil {
		return models.DiscordConfig{}, err
	}
	return cfg, nil
}
