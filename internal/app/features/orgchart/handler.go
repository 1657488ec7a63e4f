// internal/app/features/orgchart/handler.go
package orgchart

import (
	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/system/pagecache"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler edits the members of the organigramme page.
type Handler struct {
	DB     *mongo.Database
	Pages  *pagecache.Cache
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(db *mongo.Database, cache *pagecache.Cache, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Pages:  cache,
		Log:    logger,
		ErrLog: errLog,
	}
}
