// internal/app/features/subscribers/admin.go
package subscribers

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	subscriberstore "github.com/dalemusser/sagov/internal/app/store/subscribers"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
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

const adminPath = "/intranet/newsletter/abonnes"

type subscriberRow struct {
	ID           string
	DiscordID    string
	Name         string
	SubscribedAt string
}

type adminVM struct {
	viewdata.BaseVM
	Subscribers  []subscriberRow
	Error        string
	NewDiscordID string
	NewName      string

	ImportError   template.HTML
	ImportSummary string
}

type subscriberInput struct {
	DiscordID string `validate:"required,snowflake" label:"ID Discord"`
	Name      string `validate:"required,max=80" label:"Nom"`
}

func readSubscriber(r *http.Request) subscriberInput {
	return subscriberInput{
		DiscordID: strings.TrimSpace(r.FormValue("discord_id")),
		Name:      strings.TrimSpace(r.FormValue("name")),
	}
}

// ServeList shows every subscriber in delivery order.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, adminVM{})
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, vm adminVM) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := subscriberstore.New(h.DB).List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list subscribers failed", err, "Impossible de charger les abonnés.", "/intranet/newsletter")
		return
	}

	vm.BaseVM = viewdata.NewBaseVM(r, "Abonnés", "/intranet/newsletter")
	for _, s := range list {
		vm.Subscribers = append(vm.Subscribers, subscriberRow{
			ID:           s.ID.Hex(),
			DiscordID:    s.DiscordID,
			Name:         s.Name,
			SubscribedAt: s.SubscribedAt.Format("02/01/2006"),
		})
	}
	templates.Render(w, r, "subscribers_list", vm)
}

// HandleAdd registers a subscriber on someone's behalf.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", adminPath)
		return
	}

	in := readSubscriber(r)
	reRender := func(msg string) {
		h.renderList(w, r, adminVM{Error: msg, NewDiscordID: in.DiscordID, NewName: in.Name})
	}
	if res := inputval.Validate(in); res.HasErrors() {
		reRender(res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := subscriberstore.New(h.DB).Create(ctx, models.NewsletterSubscriber{DiscordID: in.DiscordID, Name: in.Name})
	if errors.Is(err, subscriberstore.ErrAlreadySubscribed) {
		reRender(msgAlreadySubscribed)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "add subscriber failed", err, "Impossible d'ajouter l'abonné.", adminPath)
		return
	}

	_, uname, _, _ := authz.UserCtx(r)
	h.Log.Info("subscriber added",
		zap.String("subscriber_id", sub.ID.Hex()),
		zap.String("discord_id", sub.DiscordID),
		zap.String("by", uname))
	h.AuditLog.SubscriberAdded(ctx, r, auditlog.ActorFrom(r), sub.DiscordID)
	viewdata.Redirect(w, r, adminPath, "created")
}

// HandleDelete removes one subscriber record.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad subscriber id", err, "Abonné introuvable.", adminPath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := subscriberstore.New(h.DB).DeleteByID(ctx, oid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete subscriber failed", err, "Impossible de supprimer l'abonné.", adminPath)
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "delete unknown subscriber", nil, "Abonné introuvable.", adminPath)
		return
	}
	h.AuditLog.SubscriberRemoved(ctx, r, auditlog.ActorFrom(r), oid.Hex())
	viewdata.Redirect(w, r, adminPath, "deleted")
}
