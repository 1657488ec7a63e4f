// internal/domain/models/discordconfig.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscordConfig holds the bot credential used to deliver newsletters.
// The most recently updated record is the active one; when none exists
// delivery is disabled.
type DiscordConfig struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Token   string             `bson:"token" json:"-"`
	Enabled bool               `bson:"enabled" json:"enabled"`

	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
	UpdatedByName string    `bson:"updated_by_name,omitempty" json:"updated_by_name,omitempty"`
}

// Usable reports whether real delivery can be attempted.
func (c DiscordConfig) Usable() bool {
	return c.Enabled && c.Token != ""
}
