// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

// Task is a personal to-do item; each user only sees their own.
type Task struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title  string             `bson:"title" json:"title"`
	Status string             `bson:"status" json:"status"` // pending | completed
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
