// internal/app/store/metrics/metricsstore.go
package metricsstore

import (
	"context"
	"time"

	eventstore "github.com/dalemusser/sagov/internal/app/store/events"
	newsletterstore "github.com/dalemusser/sagov/internal/app/store/newsletters"
	resourcestore "github.com/dalemusser/sagov/internal/app/store/resources"
	subscriberstore "github.com/dalemusser/sagov/internal/app/store/subscribers"
	taskstore "github.com/dalemusser/sagov/internal/app/store/tasks"
	"github.com/dalemusser/sagov/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Counts is the set of totals shown on the intranet dashboard.
type Counts struct {
	PendingTasks     int64
	UpcomingEvents   int64
	DraftNewsletters int64
	Subscribers      int64
	Resources        int64
}

// FetchDashboardCounts returns the dashboard totals for userID as of now.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchDashboardCounts(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, now time.Time) Counts {
	var out Counts

	// pending tasks belong to the viewer only
	if n, err := db.Collection(taskstore.Collection).CountDocuments(ctx, bson.M{
		"user_id": userID,
		"status":  models.TaskPending,
	}); err == nil {
		out.PendingTasks = n
	}

	if n, err := db.Collection(eventstore.Collection).CountDocuments(ctx, bson.M{
		"date": bson.M{"$gte": now.Format(eventstore.DateLayout)},
	}); err == nil {
		out.UpcomingEvents = n
	}

	if n, err := db.Collection(newsletterstore.Collection).CountDocuments(ctx, bson.M{
		"status": models.NewsletterDraft,
	}); err == nil {
		out.DraftNewsletters = n
	}

	if n, err := db.Collection(subscriberstore.Collection).CountDocuments(ctx, bson.M{}); err == nil {
		out.Subscribers = n
	}

	if n, err := db.Collection(resourcestore.Collection).CountDocuments(ctx, bson.M{}); err == nil {
		out.Resources = n
	}

	return out
}
