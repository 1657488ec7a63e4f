// internal/app/features/discordadmin/handler.go
package discordadmin

import (
	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler edits the newsletter delivery configuration.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog, AuditLog: audit}
}
