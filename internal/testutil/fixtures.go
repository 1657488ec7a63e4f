package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an intranet account. The password is hashed at the
// minimum bcrypt cost to keep tests fast.
func (f *Fixtures) CreateUser(ctx context.Context, username, password, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}
	u := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		Password:   string(hash),
		Role:       role,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAdmin inserts an admin account.
func (f *Fixtures) CreateAdmin(ctx context.Context, username, password string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, username, password, models.RoleAdmin)
}

// CreatePage stores a page document under slug.
func (f *Fixtures) CreatePage(ctx context.Context, p models.PageContent) models.PageContent {
	f.t.Helper()

	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sections == nil {
		p.Sections = []models.PageSection{}
	}
	if p.Buttons == nil {
		p.Buttons = []models.PageButton{}
	}
	if _, err := f.db.Collection("site_content").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test page: %v", err)
	}
	return p
}

// CreateNewsletter inserts a newsletter with the given status.
func (f *Fixtures) CreateNewsletter(ctx context.Context, title, content, status string) models.Newsletter {
	f.t.Helper()

	n := models.Newsletter{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Content:   content,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if status == models.NewsletterSent {
		at := n.CreatedAt
		n.SentAt = &at
	}
	if _, err := f.db.Collection("newsletters").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test newsletter: %v", err)
	}
	return n
}

// CreateSubscriber inserts a newsletter subscriber.
func (f *Fixtures) CreateSubscriber(ctx context.Context, discordID, name string) models.NewsletterSubscriber {
	f.t.Helper()

	s := models.NewsletterSubscriber{
		ID:           primitive.NewObjectID(),
		DiscordID:    discordID,
		Name:         name,
		SubscribedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("newsletter_subscribers").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test subscriber: %v", err)
	}
	return s
}

// CreateTask inserts a pending task owned by userID.
func (f *Fixtures) CreateTask(ctx context.Context, title string, userID primitive.ObjectID) models.Task {
	f.t.Helper()

	task := models.Task{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Status:    models.TaskPending,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateEvent inserts a calendar event.
func (f *Fixtures) CreateEvent(ctx context.Context, title, date, hhmm string) models.Event {
	f.t.Helper()

	e := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Date:      date,
		Time:      hhmm,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return e
}
