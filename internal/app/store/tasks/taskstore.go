// internal/app/store/tasks/taskstore.go
package taskstore

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

const Collection = "tasks"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a pending task owned by t.UserID.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = primitive.NewObjectID()
	t.Title = strings.TrimSpace(t.Title)
	t.Status = models.TaskPending
	t.CreatedAt = time.Now().UTC()

	if t.Title == "" {
		return models.Task{}, mongo.CommandError{Message: "title is required"}
	}
	if t.UserID.IsZero() {
		return models.Task{}, mongo.CommandError{Message: "user_id is required"}
	}

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// ListForUser returns the user's tasks, pending first, newest first within each status.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "status", Value: -1}, {Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Toggle flips a task between pending and completed. Only the owner's task
// matches; it returns mongo.ErrNoDocuments otherwise.
func (s *Store) Toggle(ctx context.Context, id, userID primitive.ObjectID) (models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&t); err != nil {
		return models.Task{}, err
	}
	next := models.TaskCompleted
	if t.Status == models.TaskCompleted {
		next = models.TaskPending
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID, "status": t.Status},
		bson.M{"$set": bson.M{"status": next}})
	if err != nil {
		return models.Task{}, err
	}
	if res.MatchedCount == 0 {
		// Toggled concurrently; report the stored state.
		return s.get(ctx, id, userID)
	}
	t.Status = next
	return t, nil
}

// Delete removes a task owned by userID. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountPending returns how many of the user's tasks are still pending.
func (s *Store) CountPending(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID, "status": models.TaskPending})
}

func (s *Store) get(ctx context.Context, id, userID primitive.ObjectID) (models.Task, error) {
	var t models.Task
	err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&t)
	return t, err
}
