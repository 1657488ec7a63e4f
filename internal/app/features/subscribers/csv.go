// internal/app/features/subscribers/csv.go
package subscribers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	subscriberstore "github.com/dalemusser/sagov/internal/app/store/subscribers"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/csvutil"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/domain/models"
	"go.uber.org/zap"
)

// HandleImport adds every row of an uploaded "discord id, name" CSV. The
// whole file is validated first; ids already on the list are skipped.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvutil.MaxUploadSize)

	file, _, err := r.FormFile("csv")
	if err != nil {
		msg := "Un fichier CSV est requis."
		if strings.Contains(err.Error(), "request body too large") {
			msg = "Fichier trop volumineux (1 Mo maximum)."
		}
		h.renderList(w, r, adminVM{Error: msg})
		return
	}
	defer file.Close()

	rows, htmlErr, err := csvutil.PreScanSubscribersCSV(file)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "read csv failed", err, "Impossible de lire le fichier.", adminPath)
		return
	}
	if htmlErr != "" {
		h.renderList(w, r, adminVM{ImportError: htmlErr})
		return
	}
	if len(rows) == 0 {
		h.renderList(w, r, adminVM{Error: "Le fichier ne contient aucun abonné."})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "subscriber import")
	defer cancel()

	store := subscriberstore.New(h.DB)
	added, skipped := 0, 0
	for _, row := range rows {
		_, err := store.Create(ctx, models.NewsletterSubscriber{DiscordID: row.DiscordID, Name: row.Name})
		switch {
		case errors.Is(err, subscriberstore.ErrAlreadySubscribed):
			skipped++
		case err != nil:
			h.Log.Error("import stopped",
				zap.Int("line", row.Line),
				zap.Int("added", added),
				zap.Error(err))
			h.ErrLog.LogServerError(w, r, "import subscriber failed", err,
				fmt.Sprintf("Import interrompu à la ligne %d (%d abonné(s) ajouté(s)).", row.Line, added), adminPath)
			return
		default:
			added++
		}
	}

	actor := auditlog.ActorFrom(r)
	h.Log.Info("subscribers imported",
		zap.Int("added", added),
		zap.Int("skipped", skipped),
		zap.String("by", actor.Name))
	h.AuditLog.SubscribersImported(ctx, r, actor, added, skipped)

	h.renderList(w, r, adminVM{
		ImportSummary: fmt.Sprintf("%d abonné(s) ajouté(s), %d déjà inscrit(s).", added, skipped),
	})
}

// ServeExport downloads the subscriber list as CSV, in delivery order.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	subs, err := subscriberstore.New(h.DB).List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "export subscribers failed", err, "Impossible d'exporter les abonnés.", adminPath)
		return
	}

	name := "abonnes-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := csvutil.WriteSubscribersCSV(w, subs); err != nil {
		h.Log.Warn("write subscriber csv failed", zap.Error(err))
	}
}
