// internal/app/store/newsletters/newsletterstore.go
package newsletterstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "newsletters"

// ErrNotDraft is returned when changing a newsletter that has already been sent.
var ErrNotDraft = errors.New("newsletter has already been sent")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func validate(n models.Newsletter) error {
	if strings.TrimSpace(n.Title) == "" {
		return mongo.CommandError{Message: "title is required"}
	}
	if strings.TrimSpace(n.Content) == "" {
		return mongo.CommandError{Message: "content is required"}
	}
	if n.Image != "" && !urlutil.IsValidAbsHTTPURL(n.Image) {
		return mongo.CommandError{Message: "image must be a valid http(s) URL"}
	}
	return nil
}

// Create inserts a draft newsletter.
func (s *Store) Create(ctx context.Context, n models.Newsletter) (models.Newsletter, error) {
	n.ID = primitive.NewObjectID()
	n.Title = strings.TrimSpace(n.Title)
	n.Image = strings.TrimSpace(n.Image)
	n.Status = models.NewsletterDraft
	n.CreatedAt = time.Now().UTC()
	n.SentAt = nil

	if err := validate(n); err != nil {
		return models.Newsletter{}, err
	}
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Newsletter{}, err
	}
	return n, nil
}

// Update replaces title, content and image of a draft.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, mut models.Newsletter) error {
	mut.Title = strings.TrimSpace(mut.Title)
	mut.Image = strings.TrimSpace(mut.Image)
	if err := validate(mut); err != nil {
		return err
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.NewsletterDraft},
		bson.M{"$set": bson.M{
			"title":   mut.Title,
			"content": mut.Content,
			"image":   mut.Image,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missingOrSent(ctx, id)
	}
	return nil
}

// GetByID returns a newsletter by its ID, or mongo.ErrNoDocuments.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Newsletter, error) {
	var n models.Newsletter
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return models.Newsletter{}, err
	}
	return n, nil
}

// List returns every newsletter, newest first.
func (s *Store) List(ctx context.Context) ([]models.Newsletter, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Newsletter
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSent moves a draft to sent and stamps SentAt. A newsletter that is
// already sent is left untouched and ErrNotDraft is returned.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.NewsletterDraft},
		bson.M{"$set": bson.M{"status": models.NewsletterSent, "sent_at": at.UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missingOrSent(ctx, id)
	}
	return nil
}

// Delete removes a newsletter by ID. Sent newsletters can be deleted too;
// they are history, not state.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByStatus returns how many newsletters have the given status.
func (s *Store) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": status})
}

func (s *Store) missingOrSent(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	return ErrNotDraft
}
