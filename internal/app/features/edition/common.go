// internal/app/features/edition/common.go
package edition

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/sagov/internal/app/pageedit"
	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// formError is a validation message shown above the editor.
type formError string

func (e formError) Error() string { return string(e) }

// userMessage maps an editing failure to the text shown to the author.
// It reports false for failures that are not the author's fault.
func userMessage(err error) (string, bool) {
	var fe formError
	switch {
	case errors.As(err, &fe):
		return string(fe), true
	case errors.Is(err, pageedit.ErrMissingField):
		return "Veuillez remplir tous les champs obligatoires.", true
	case errors.Is(err, pageedit.ErrSectionNotFound):
		return "Section introuvable.", true
	case errors.Is(err, pageedit.ErrButtonNotFound):
		return "Bouton introuvable.", true
	case errors.Is(err, pageedit.ErrRowNotFound):
		return "Ligne introuvable.", true
	case errors.Is(err, pageedit.ErrIndexRange):
		return "Image introuvable.", true
	}
	return "", false
}

// cleanHTML keeps plain text as typed and sanitizes markup.
func cleanHTML(s string) string {
	s = strings.TrimSpace(s)
	if htmlsanitize.IsPlainText(s) {
		return s
	}
	return htmlsanitize.Sanitize(s)
}

func editURL(slug string) string {
	return "/intranet/edition/" + slug
}

// mutate loads the page named by the {slug} URL parameter, applies fn and
// saves the page. Validation failures re-render the editor with nothing saved.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(e *pageedit.Editor) error) {
	slug := pagestore.NormalizeSlug(chi.URLParam(r, "slug"))

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxPageContentSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", editURL(slug))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := pagestore.New(h.DB)
	page, err := store.GetBySlug(ctx, slug)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "edit unknown page", err, "Page introuvable.", "/intranet/edition")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load page failed", err, "Impossible de charger la page.", "/intranet/edition")
		return
	}

	if err := fn(pageedit.New(&page)); err != nil {
		msg, ok := userMessage(err)
		if !ok {
			h.ErrLog.LogServerError(w, r, "edit page failed", err, "La modification a échoué.", editURL(slug))
			return
		}
		h.renderEdit(w, r, page, msg)
		return
	}

	_, uname, _, _ := authz.UserCtx(r)
	page.UpdatedByName = uname
	if err := store.Upsert(ctx, page); err != nil {
		h.Log.Error("failed to save page", zap.String("slug", slug), zap.Error(err))
		h.renderEdit(w, r, page, "Échec de l'enregistrement de la page.")
		return
	}
	h.Pages.Invalidate(slug)

	h.Log.Info("page updated",
		zap.String("slug", slug),
		zap.String("op", op),
		zap.String("by", uname))
	viewdata.Redirect(w, r, editURL(slug), "saved")
}

// formIndex reads a non-negative integer form value.
func formIndex(r *http.Request, key string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(r.FormValue(key)))
	if err != nil || i < 0 {
		return 0, formError("Position d'image invalide.")
	}
	return i, nil
}

// formAmount parses a money amount typed with a dot or a comma.
func formAmount(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f
}

func movesUp(r *http.Request) bool {
	return r.FormValue("dir") == "up"
}

// sectionTitles maps section ids to titles for the button form.
func sectionTitles(p models.PageContent) map[string]string {
	out := make(map[string]string, len(p.Sections))
	for _, s := range p.Sections {
		out[s.ID] = s.Title
	}
	return out
}
