// internal/app/store/pages/pagestore.go
package pagestore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/sagov/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per page slug.
const Collection = "site_content"

var ErrInvalidSlug = errors.New("slug must contain only lowercase letters, digits and dashes")

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// NormalizeSlug lowercases and trims s. It does not validate.
func NormalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidSlug reports whether s can be used as a page key.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// GetBySlug returns the page stored under slug, or mongo.ErrNoDocuments.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.PageContent, error) {
	var p models.PageContent
	if err := s.c.FindOne(ctx, bson.M{"slug": NormalizeSlug(slug)}).Decode(&p); err != nil {
		return models.PageContent{}, err
	}
	return p, nil
}

// Upsert writes the whole page under its slug and stamps UpdatedAt.
func (s *Store) Upsert(ctx context.Context, p models.PageContent) error {
	p.Slug = NormalizeSlug(p.Slug)
	if !ValidSlug(p.Slug) {
		return ErrInvalidSlug
	}
	now := time.Now().UTC()
	p.UpdatedAt = &now

	_, err := s.c.ReplaceOne(ctx, bson.M{"slug": p.Slug}, p, options.Replace().SetUpsert(true))
	return err
}

// InsertIfMissing stores p only when no page exists for its slug. It reports
// whether a document was created.
func (s *Store) InsertIfMissing(ctx context.Context, p models.PageContent) (bool, error) {
	p.Slug = NormalizeSlug(p.Slug)
	if !ValidSlug(p.Slug) {
		return false, ErrInvalidSlug
	}
	now := time.Now().UTC()
	p.UpdatedAt = &now

	res, err := s.c.UpdateOne(ctx,
		bson.M{"slug": p.Slug},
		bson.M{"$setOnInsert": p},
		options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// GetAll returns every page sorted by slug.
func (s *Store) GetAll(ctx context.Context) ([]models.PageContent, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "slug", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PageContent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the page stored under slug.
func (s *Store) Delete(ctx context.Context, slug string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"slug": NormalizeSlug(slug)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
