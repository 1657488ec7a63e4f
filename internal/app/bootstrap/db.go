// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/sagov/internal/app/store/audit"
	"github.com/dalemusser/sagov/internal/app/system/indexes"
	"github.com/dalemusser/sagov/internal/app/system/seed"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/validators"
	"github.com/dalemusser/sagov/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and checks it with a ping so a bad URI
// or an unreachable server stops startup instead of the first request.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// Timeouts apply from the first hook that waits on the database.
	timeouts.Configure(appCfg.Timeouts)

	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("sagov")
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}
	if appCfg.AuditRetention > 0 {
		deps.AuditRetention = workers.NewAuditRetention(audit.New(deps.MongoDatabase), logger,
			appCfg.AuditPruneInterval, appCfg.AuditRetention)
	}
	return deps, nil
}

// EnsureSchema applies collection validators and indexes, then seeds the
// default page content and the first admin account. Every step is
// idempotent, so it runs on each start.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	db := deps.MongoDatabase
	if err := validators.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return seedData(ctx, appCfg, db, logger)
}

func seedData(ctx context.Context, appCfg AppConfig, db *mongo.Database, logger *zap.Logger) error {
	content, err := seed.Default()
	if err != nil {
		return err
	}
	n, err := seed.Pages(ctx, db, content, logger)
	if err != nil {
		return fmt.Errorf("seed pages: %w", err)
	}
	if n > 0 {
		logger.Info("seeded default pages", zap.Int("count", n))
	}

	created, err := seed.Admin(ctx, db, appCfg.SeedAdminUsername, appCfg.SeedAdminPassword, logger)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Warn("created the initial admin account; change its password",
			zap.String("username", appCfg.SeedAdminUsername))
	}
	return nil
}
