// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	resourcestore "github.com/dalemusser/sagov/internal/app/store/resources"
	"github.com/dalemusser/sagov/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	ensure("users", usersSchema())
	ensure(pagestore.Collection, pagesSchema())

	// Intranet tools
	ensure("tasks", tasksSchema())
	ensure("events", eventsSchema())
	ensure(resourcestore.Collection, resourcesSchema())

	// Newsletter delivery
	ensure("newsletters", newslettersSchema())
	ensure("newsletter_subscribers", subscribersSchema())
	ensure("discord_config", discordConfigSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"username", "username_ci", "password", "role"},
			"properties": bson.M{
				"username":    nonBlank,
				"username_ci": nonBlank,
				"password":    bson.M{"bsonType": "string", "minLength": 1},
				"role":        bson.M{"enum": bson.A{models.RoleAdmin, models.RoleUser}},
				"created_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func pagesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"slug"},
			"properties": bson.M{
				"slug":          bson.M{"bsonType": "string", "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"},
				"title":         bson.M{"bsonType": "string"},
				"content":       bson.M{"bsonType": "string"},
				"sections":      bson.M{"bsonType": bson.A{"array", "null"}},
				"buttons":       bson.M{"bsonType": bson.A{"array", "null"}},
				"org_members":   bson.M{"bsonType": bson.A{"array", "null"}},
				"economic_data": bson.M{"bsonType": bson.A{"array", "null"}},
			},
		},
	}
}

func tasksSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "status", "user_id"},
			"properties": bson.M{
				"title":      nonBlank,
				"status":     bson.M{"enum": bson.A{models.TaskPending, models.TaskCompleted}},
				"user_id":    bson.M{"bsonType": "objectId"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "date", "time"},
			"properties": bson.M{
				"title": nonBlank,
				"date":  bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
				"time":  bson.M{"bsonType": "string", "pattern": "^[0-9]{2}:[0-9]{2}$"},
			},
		},
	}
}

func resourcesSchema() bson.M {
	// Build the enum for the resource type field from the canonical list in the store.
	typeEnum := bson.A{}
	for _, t := range resourcestore.Types {
		typeEnum = append(typeEnum, t)
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "url", "type", "order"},
			"properties": bson.M{
				"title": nonBlank,
				"url":   bson.M{"bsonType": "string", "pattern": "^https?://"},
				"type":  bson.M{"bsonType": "string", "enum": typeEnum},
				"order": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
			},
		},
	}
}

func newslettersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "content", "status", "created_at"},
			"properties": bson.M{
				"title":      nonBlank,
				"content":    nonBlank,
				"status":     bson.M{"enum": bson.A{models.NewsletterDraft, models.NewsletterSent}},
				"created_at": bson.M{"bsonType": "date"},
				"sent_at":    bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func subscribersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"discord_id", "name"},
			"properties": bson.M{
				"discord_id":    nonBlank,
				"name":          nonBlank,
				"subscribed_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func discordConfigSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"enabled", "updated_at"},
			"properties": bson.M{
				"token":      bson.M{"bsonType": "string"},
				"enabled":    bson.M{"bsonType": "bool"},
				"updated_at": bson.M{"bsonType": "date"},
			},
		},
	}
}
