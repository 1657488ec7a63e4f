// internal/app/features/subscribers/public.go
package subscribers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	subscriberstore "github.com/dalemusser/sagov/internal/app/store/subscribers"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	publicPath      = "/newsletter"
	unsubscribePath = "/newsletter/unsubscribe"

	msgAlreadySubscribed = "Cet ID Discord est déjà inscrit à la newsletter."
	msgNotSubscribed     = "Cet ID Discord n'est pas inscrit à la newsletter."
	msgTooManyRequests   = "Trop de tentatives. Réessayez dans quelques minutes."
)

type publicVM struct {
	viewdata.BaseVM
	DiscordID string
	Name      string
	Error     string
}

type unsubscribeInput struct {
	DiscordID string `validate:"required,snowflake" label:"ID Discord"`
}

func (h *Handler) renderPublic(w http.ResponseWriter, r *http.Request, name, title string, status int, vm publicVM) {
	vm.BaseVM = viewdata.NewBaseVM(r, title, "/")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templates.Render(w, r, name, vm)
}

// ServeSubscribe shows the sign-up form.
func (h *Handler) ServeSubscribe(w http.ResponseWriter, r *http.Request) {
	h.renderPublic(w, r, "newsletter_subscribe", "Newsletter", http.StatusOK, publicVM{})
}

// HandleSubscribe adds the visitor to the list. The duplicate check is a
// read before the insert, so it can miss a concurrent sign-up.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", publicPath)
		return
	}

	in := readSubscriber(r)
	fail := func(status int, msg string) {
		h.renderPublic(w, r, "newsletter_subscribe", "Newsletter", status, publicVM{DiscordID: in.DiscordID, Name: in.Name, Error: msg})
	}

	if h.Forms != nil && !h.Forms.Allow(r) {
		h.Log.Warn("subscribe rate limited")
		fail(http.StatusTooManyRequests, msgTooManyRequests)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		fail(http.StatusOK, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, err := subscriberstore.New(h.DB).Create(ctx, models.NewsletterSubscriber{DiscordID: in.DiscordID, Name: in.Name})
	if errors.Is(err, subscriberstore.ErrAlreadySubscribed) {
		fail(http.StatusOK, msgAlreadySubscribed)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "subscribe failed", err, "Une erreur est survenue lors de l'inscription. Veuillez réessayer.", publicPath)
		return
	}

	h.Log.Info("newsletter subscription", zap.String("subscriber_id", sub.ID.Hex()))
	viewdata.Redirect(w, r, publicPath, "subscribed")
}

// ServeUnsubscribe shows the opt-out form, prefilled from ?id= when present.
func (h *Handler) ServeUnsubscribe(w http.ResponseWriter, r *http.Request) {
	h.renderPublic(w, r, "newsletter_unsubscribe", "Désinscription", http.StatusOK,
		publicVM{DiscordID: strings.TrimSpace(r.URL.Query().Get("id"))})
}

// HandleUnsubscribe deletes every subscription held by the Discord id.
func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", unsubscribePath)
		return
	}

	in := unsubscribeInput{DiscordID: strings.TrimSpace(r.FormValue("discord_id"))}
	fail := func(status int, msg string) {
		h.renderPublic(w, r, "newsletter_unsubscribe", "Désinscription", status, publicVM{DiscordID: in.DiscordID, Error: msg})
	}

	if h.Forms != nil && !h.Forms.Allow(r) {
		h.Log.Warn("unsubscribe rate limited")
		fail(http.StatusTooManyRequests, msgTooManyRequests)
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		fail(http.StatusOK, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := subscriberstore.New(h.DB).DeleteByDiscordID(ctx, in.DiscordID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "unsubscribe failed", err, "Une erreur est survenue lors de la désinscription. Veuillez réessayer.", unsubscribePath)
		return
	}
	if n == 0 {
		fail(http.StatusOK, msgNotSubscribed)
		return
	}

	h.Log.Info("newsletter unsubscription", zap.Int64("removed", n))
	viewdata.Redirect(w, r, unsubscribePath, "unsubscribed")
}
