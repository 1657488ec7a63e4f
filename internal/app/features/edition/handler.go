// internal/app/features/edition/handler.go
package edition

import (
	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/system/pagecache"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the intranet content editor. Writes go to the store and
// evict the page from the public cache.
type Handler struct {
	DB     *mongo.Database
	Pages  *pagecache.Cache
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs a Handler bound to the given Mongo database and page cache.
func NewHandler(db *mongo.Database, cache *pagecache.Cache, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Pages:  cache,
		Log:    logger,
		ErrLog: errLog,
	}
}
