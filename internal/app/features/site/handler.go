// internal/app/features/site/handler.go
package site

import (
	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/system/pagecache"
	"go.uber.org/zap"
)

// Handler serves the public pages from the page cache.
type Handler struct {
	Pages  *pagecache.Cache
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs a Handler reading pages through cache.
func NewHandler(cache *pagecache.Cache, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Pages:  cache,
		Log:    logger,
		ErrLog: errLog,
	}
}
