// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	eventstore "github.com/dalemusser/sagov/internal/app/store/events"
	metricsstore "github.com/dalemusser/sagov/internal/app/store/metrics"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// upcomingShown is how many agenda entries the dashboard lists.
const upcomingShown = 5

type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	// now is swappable for tests.
	now func() time.Time
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		now:    time.Now,
	}
}

type dashboardData struct {
	viewdata.BaseVM
	metricsstore.Counts
	Upcoming []models.Event
}

// ServeDashboard shows the intranet home with the viewer's counters.
// GET /intranet
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, uname, uid, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	now := h.now()
	data := dashboardData{
		BaseVM: viewdata.NewBaseVM(r, "Tableau de bord", "/"),
		Counts: metricsstore.FetchDashboardCounts(ctx, h.DB, uid, now),
	}

	upcoming, err := eventstore.New(h.DB).Upcoming(ctx, now, upcomingShown)
	if err != nil {
		h.Log.Warn("load upcoming events failed", zap.Error(err))
	}
	data.Upcoming = upcoming

	h.Log.Debug("dashboard served", zap.String("user", uname))

	templates.Render(w, r, "intranet_dashboard", data)
}
