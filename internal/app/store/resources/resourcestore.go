// internal/app/store/resources/resourcestore.go
package resourcestore

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

const Collection = "resources"

// Resource types offered by the form.
var Types = []string{"document", "form", "link", "video"}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var byOrder = options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: 1}})

// Create appends a resource at the end of the list (order = current count).
func (s *Store) Create(ctx context.Context, r models.Resource) (models.Resource, error) {
	r.ID = primitive.NewObjectID()
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
	if r.Type == "" {
		r.Type = "link"
	}
	r.CreatedAt = time.Now().UTC()

	if r.Title == "" {
		return models.Resource{}, mongo.CommandError{Message: "title is required"}
	}
	if !urlutil.IsValidAbsHTTPURL(r.URL) {
		return models.Resource{}, mongo.CommandError{Message: "url must be a valid http(s) URL"}
	}

	n, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return models.Resource{}, err
	}
	r.Order = int(n)

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Resource{}, err
	}
	return r, nil
}

// List returns every resource in display order.
func (s *Store) List(ctx context.Context) ([]models.Resource, error) {
	cur, err := s.c.Find(ctx, bson.M{}, byOrder)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Resource
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Move swaps the resource's order with its neighbour. It reports false at
// either end of the list.
func (s *Store) Move(ctx context.Context, id primitive.ObjectID, up bool) (bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	pos := -1
	for i, r := range list {
		if r.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false, mongo.ErrNoDocuments
	}
	other := pos + 1
	if up {
		other = pos - 1
	}
	if other < 0 || other >= len(list) {
		return false, nil
	}

	a, b := list[pos], list[other]
	if _, err := s.c.UpdateByID(ctx, a.ID, bson.M{"$set": bson.M{"order": b.Order}}); err != nil {
		return false, err
	}
	if _, err := s.c.UpdateByID(ctx, b.ID, bson.M{"$set": bson.M{"order": a.Order}}); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a resource and renumbers the survivors 0..n-1 in their
// current order.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount == 0 {
		return 0, nil
	}
	if err := s.renumber(ctx); err != nil {
		return res.DeletedCount, errors.Join(errors.New("resource deleted but order not renumbered"), err)
	}
	return res.DeletedCount, nil
}

func (s *Store) renumber(ctx context.Context) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	var writes []mongo.WriteModel
	for i, r := range list {
		if r.Order == i {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": r.ID}).
			SetUpdate(bson.M{"$set": bson.M{"order": i}}))
	}
	if len(writes) == 0 {
		return nil
	}
	_, err = s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}

// Count returns the number of resources.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
