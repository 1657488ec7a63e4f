// internal/app/features/agenda/agenda.go
package agenda

import (
	"context"
	"net/http"
	"strings"

	eventstore "github.com/dalemusser/sagov/internal/app/store/events"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const basePath = "/intranet/agenda"

type eventRow struct {
	ID          string
	Title       string
	Description string
	Date        string
	Time        string
}

type listVM struct {
	viewdata.BaseVM
	Upcoming []eventRow
	Past     []eventRow

	Error string
	Form  eventInput
}

type eventInput struct {
	Title       string `validate:"required,max=200" label:"Titre"`
	Description string `validate:"max=2000" label:"Description"`
	Date        string `validate:"required,ymd" label:"Date"`
	Time        string `validate:"required,hhmm" label:"Heure"`
}

// displayDate turns YYYY-MM-DD into DD/MM/YYYY.
func displayDate(ymd string) string {
	p := strings.Split(ymd, "-")
	if len(p) != 3 {
		return ymd
	}
	return p[2] + "/" + p[1] + "/" + p[0]
}

// ServeList shows upcoming events first, then past ones, both chronological.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, "", eventInput{})
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, errMsg string, form eventInput) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	events, err := eventstore.New(h.DB).List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list events failed", err, "Impossible de charger l'agenda.", "/intranet")
		return
	}

	today := h.now().Format(eventstore.DateLayout)
	vm := listVM{
		BaseVM: viewdata.NewBaseVM(r, "Agenda", "/intranet"),
		Error:  errMsg,
		Form:   form,
	}
	for _, e := range events {
		row := eventRow{
			ID:          e.ID.Hex(),
			Title:       e.Title,
			Description: e.Description,
			Date:        displayDate(e.Date),
			Time:        e.Time,
		}
		if e.Date >= today {
			vm.Upcoming = append(vm.Upcoming, row)
		} else {
			vm.Past = append(vm.Past, row)
		}
	}
	templates.Render(w, r, "agenda_list", vm)
}

// HandleCreate adds an event to the shared calendar.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", basePath)
		return
	}

	in := eventInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Date:        strings.TrimSpace(r.FormValue("date")),
		Time:        strings.TrimSpace(r.FormValue("time")),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderList(w, r, res.First(), in)
		return
	}

	_, uname, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := eventstore.New(h.DB).Create(ctx, models.Event{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		UserID:      uid,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create event failed", err, "Impossible d'ajouter l'événement.", basePath)
		return
	}

	h.Log.Info("event created", zap.String("event_id", e.ID.Hex()), zap.String("date", e.Date), zap.String("by", uname))
	viewdata.Redirect(w, r, basePath, "created")
}

// HandleDelete removes an event.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad event id", err, "Événement introuvable.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := eventstore.New(h.DB).Delete(ctx, oid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete event failed", err, "Impossible de supprimer l'événement.", basePath)
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "delete unknown event", nil, "Événement introuvable.", basePath)
		return
	}
	viewdata.Redirect(w, r, basePath, "deleted")
}
