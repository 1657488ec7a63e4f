// internal/app/features/newsletters/drafts.go
package newsletters

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	newsletterstore "github.com/dalemusser/sagov/internal/app/store/newsletters"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/dispatch"
	"github.com/dalemusser/sagov/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const basePath = "/intranet/newsletter"

type newsletterRow struct {
	ID        string
	Title     string
	Sent      bool
	CreatedAt string
	SentAt    string
}

type listVM struct {
	viewdata.BaseVM
	Newsletters []newsletterRow
	Drafts      int
}

type formVM struct {
	viewdata.BaseVM
	ID      string
	Action  string
	Heading string
	Title   string
	Content string
	Image   string
	Error   string
}

type previewVM struct {
	viewdata.BaseVM
	ID          string
	Title       string
	Sent        bool
	SentAt      string
	Message     string
	Length      int
	MaxLength   int
	TooLong     bool
	Subscribers int64
	CanSend     bool
	Error       string
}

type newsletterInput struct {
	Title   string `validate:"required,max=200" label:"Titre"`
	Content string `validate:"required,max=20000" label:"Contenu"`
	Image   string `validate:"omitempty,httpurl" label:"Image"`
}

func newsletterID(r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return oid, err == nil
}

func detailURL(id primitive.ObjectID) string {
	return basePath + "/" + id.Hex()
}

// cleanContent keeps plain text as typed and sanitizes markup. The inline
// tags the Discord formatter understands survive sanitizing.
func cleanContent(s string) string {
	s = strings.TrimSpace(s)
	if htmlsanitize.IsPlainText(s) {
		return s
	}
	return htmlsanitize.Sanitize(s)
}

func readInput(r *http.Request) newsletterInput {
	return newsletterInput{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Content: cleanContent(r.FormValue("content")),
		Image:   strings.TrimSpace(r.FormValue("image")),
	}
}

// ServeList shows every newsletter, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := newsletterstore.New(h.DB).List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list newsletters failed", err, "Impossible de charger les newsletters.", "/intranet")
		return
	}

	vm := listVM{BaseVM: viewdata.NewBaseVM(r, "Newsletter", "/intranet")}
	for _, n := range list {
		row := newsletterRow{
			ID:        n.ID.Hex(),
			Title:     n.Title,
			Sent:      n.IsSent(),
			CreatedAt: n.CreatedAt.Format("02/01/2006"),
		}
		if n.SentAt != nil {
			row.SentAt = n.SentAt.Format("02/01/2006 15:04")
		}
		if !row.Sent {
			vm.Drafts++
		}
		vm.Newsletters = append(vm.Newsletters, row)
	}
	templates.Render(w, r, "newsletter_list", vm)
}

// ServeNew shows an empty draft form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "newsletter_form", formVM{
		BaseVM:  viewdata.NewBaseVM(r, "Nouvelle newsletter", basePath),
		Action:  basePath,
		Heading: "Nouvelle newsletter",
	})
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, id string, in newsletterInput, errMsg string) {
	vm := formVM{
		ID:      id,
		Title:   in.Title,
		Content: in.Content,
		Image:   in.Image,
		Error:   errMsg,
	}
	if id == "" {
		vm.BaseVM = viewdata.NewBaseVM(r, "Nouvelle newsletter", basePath)
		vm.Action = basePath
		vm.Heading = "Nouvelle newsletter"
	} else {
		vm.BaseVM = viewdata.NewBaseVM(r, "Modifier la newsletter", basePath+"/"+id)
		vm.Action = basePath + "/" + id + "/edit"
		vm.Heading = "Modifier la newsletter"
	}
	templates.Render(w, r, "newsletter_form", vm)
}

// HandleCreate stores a new draft.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxPageContentSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", basePath)
		return
	}

	in := readInput(r)
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderForm(w, r, "", in, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := newsletterstore.New(h.DB).Create(ctx, models.Newsletter{
		Title:   in.Title,
		Content: in.Content,
		Image:   in.Image,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create newsletter failed", err, "Impossible d'enregistrer la newsletter.", basePath)
		return
	}

	_, uname, _, _ := authz.UserCtx(r)
	h.Log.Info("newsletter drafted", zap.String("newsletter_id", n.ID.Hex()), zap.String("by", uname))
	viewdata.Redirect(w, r, detailURL(n.ID), "created")
}

// ServeEdit shows the form for a draft. Sent newsletters are read-only and
// send the viewer to the preview instead.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	oid, ok := newsletterID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad newsletter id", nil, "Newsletter introuvable.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := newsletterstore.New(h.DB).GetByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "newsletter not found", err, "Newsletter introuvable.", basePath)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load newsletter failed", err, "Impossible de charger la newsletter.", basePath)
		return
	}
	if n.IsSent() {
		http.Redirect(w, r, detailURL(oid), http.StatusSeeOther)
		return
	}
	h.renderForm(w, r, oid.Hex(), newsletterInput{Title: n.Title, Content: n.Content, Image: n.Image}, "")
}

// HandleEdit saves changes to a draft.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	oid, ok := newsletterID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad newsletter id", nil, "Newsletter introuvable.", basePath)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxPageContentSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", basePath)
		return
	}

	in := readInput(r)
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderForm(w, r, oid.Hex(), in, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := newsletterstore.New(h.DB).Update(ctx, oid, models.Newsletter{
		Title:   in.Title,
		Content: in.Content,
		Image:   in.Image,
	})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.LogNotFound(w, r, "edit unknown newsletter", err, "Newsletter introuvable.", basePath)
		return
	case errors.Is(err, newsletterstore.ErrNotDraft):
		h.renderForm(w, r, oid.Hex(), in, "Cette newsletter a déjà été envoyée et ne peut plus être modifiée.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "update newsletter failed", err, "Impossible d'enregistrer la newsletter.", basePath)
		return
	}
	viewdata.Redirect(w, r, detailURL(oid), "saved")
}

// HandleDelete removes a newsletter, draft or sent.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	oid, ok := newsletterID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad newsletter id", nil, "Newsletter introuvable.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := newsletterstore.New(h.DB).Delete(ctx, oid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete newsletter failed", err, "Impossible de supprimer la newsletter.", basePath)
		return
	}
	if n == 0 {
		h.ErrLog.LogNotFound(w, r, "delete unknown newsletter", nil, "Newsletter introuvable.", basePath)
		return
	}
	viewdata.Redirect(w, r, basePath, "deleted")
}

// ServePreview shows the message exactly as subscribers would receive it.
func (h *Handler) ServePreview(w http.ResponseWriter, r *http.Request) {
	h.renderPreview(w, r, "")
}

func (h *Handler) renderPreview(w http.ResponseWriter, r *http.Request, errMsg string) {
	oid, ok := newsletterID(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad newsletter id", nil, "Newsletter introuvable.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := newsletterstore.New(h.DB).GetByID(ctx, oid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "newsletter not found", err, "Newsletter introuvable.", basePath)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load newsletter failed", err, "Impossible de charger la newsletter.", basePath)
		return
	}

	subs, err := h.subscriberCount(ctx)
	if err != nil {
		h.Log.Warn("count subscribers failed", zap.Error(err))
	}

	msg := h.Service.Format(n)
	length := utf8.RuneCountInString(msg)
	role, _, _, _ := authz.UserCtx(r)

	vm := previewVM{
		BaseVM:      viewdata.NewBaseVM(r, n.Title, basePath),
		ID:          oid.Hex(),
		Title:       n.Title,
		Sent:        n.IsSent(),
		Message:     msg,
		Length:      length,
		MaxLength:   dispatch.MaxMessageLength,
		TooLong:     length > dispatch.MaxMessageLength,
		Subscribers: subs,
		CanSend:     role == models.RoleAdmin && !n.IsSent(),
		Error:       errMsg,
	}
	if n.SentAt != nil {
		vm.SentAt = n.SentAt.Format("02/01/2006 15:04")
	}
	templates.Render(w, r, "newsletter_preview", vm)
}
