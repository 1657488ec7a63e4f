// internal/domain/models/newsletter.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Newsletter status values. A newsletter moves from draft to sent exactly once.
const (
	NewsletterDraft = "draft"
	NewsletterSent  = "sent"
)

type Newsletter struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Content string             `bson:"content" json:"content"`
	Image   string             `bson:"image,omitempty" json:"image,omitempty"`
	Status  string             `bson:"status" json:"status"` // draft | sent

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	SentAt    *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}

// IsSent reports whether the newsletter already went out.
func (n Newsletter) IsSent() bool {
	return n.Status == NewsletterSent
}

// NewsletterSubscriber receives newsletters as Discord direct messages.
// DiscordID is expected to be unique but the store only checks it best-effort.
type NewsletterSubscriber struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DiscordID string             `bson:"discord_id" json:"discord_id"`
	Name      string             `bson:"name" json:"name"`

	SubscribedAt time.Time `bson:"subscribed_at" json:"subscribed_at"`
}
