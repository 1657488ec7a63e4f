// internal/app/features/subscribers/handler.go
package subscribers

import (
	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the subscriber admin list and the public sign-up forms.
type Handler struct {
	DB *mongo.Database
	// Forms throttles the public subscribe and unsubscribe posts per IP.
	Forms    *ratelimit.FormLimiter
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, forms *ratelimit.FormLimiter, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Forms: forms, Log: logger, ErrLog: errLog, AuditLog: audit}
}
