// internal/domain/models/resource.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource is an entry of the shared intranet link list.
type Resource struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title  string             `bson:"title" json:"title"`
	URL    string             `bson:"url" json:"url"`
	Type   string             `bson:"type" json:"type"` // e.g. "document", "form", "link"
	Order  int                `bson:"order" json:"order"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
