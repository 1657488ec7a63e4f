// internal/app/features/newsletters/handler.go
package newsletters

import (
	"time"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/newsletter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves newsletter drafting and the send action.
type Handler struct {
	DB      *mongo.Database
	Service *newsletter.Service
	// Pace is the dispatcher's pause between recipients; it sizes the send budget.
	Pace     time.Duration
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(db *mongo.Database, svc *newsletter.Service, pace time.Duration, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Service:  svc,
		Pace:     pace,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}
