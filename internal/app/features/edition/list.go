// internal/app/features/edition/list.go
package edition

import (
	"context"
	"net/http"
	"strings"

	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/limits"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type pageRow struct {
	Slug          string
	Title         string
	PublicURL     string
	UpdatedAt     string
	UpdatedByName string
}

type listVM struct {
	viewdata.BaseVM
	Pages    []pageRow
	Error    string
	NewSlug  string
	NewTitle string
}

type newPageInput struct {
	Slug  string `validate:"required,max=60,slug" label:"Identifiant"`
	Title string `validate:"required,max=200" label:"Titre"`
}

// PublicURL returns where a page is shown on the public site.
func PublicURL(slug string) string {
	switch slug {
	case models.PageHome:
		return "/"
	case models.PageOrgChart:
		return "/organigramme"
	case models.PageEconomy:
		return "/economie"
	default:
		return "/p/" + slug
	}
}

// ServeList shows every editable page.
// GET /intranet/edition
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, "", "", "")
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, errMsg, newSlug, newTitle string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pages, err := pagestore.New(h.DB).GetAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pages failed", err, "Impossible de charger les pages.", "/intranet")
		return
	}

	rows := make([]pageRow, 0, len(pages))
	for _, p := range pages {
		row := pageRow{
			Slug:          p.Slug,
			Title:         p.Title,
			PublicURL:     PublicURL(p.Slug),
			UpdatedByName: p.UpdatedByName,
		}
		if p.UpdatedAt != nil {
			row.UpdatedAt = p.UpdatedAt.Format("02/01/2006 15:04")
		}
		rows = append(rows, row)
	}

	templates.Render(w, r, "edition_list", listVM{
		BaseVM:   viewdata.NewBaseVM(r, "Édition de contenu", "/intranet"),
		Pages:    rows,
		Error:    errMsg,
		NewSlug:  newSlug,
		NewTitle: newTitle,
	})
}

// HandleNew creates an empty page under a new slug.
// POST /intranet/edition/new
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSmallFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Données du formulaire invalides.", "/intranet/edition")
		return
	}

	in := newPageInput{
		Slug:  pagestore.NormalizeSlug(r.FormValue("slug")),
		Title: strings.TrimSpace(r.FormValue("title")),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		h.renderList(w, r, res.First(), in.Slug, in.Title)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, uname, _, _ := authz.UserCtx(r)
	created, err := pagestore.New(h.DB).InsertIfMissing(ctx, models.PageContent{
		Slug:          in.Slug,
		Title:         in.Title,
		Images:        []string{},
		Sections:      []models.PageSection{},
		Buttons:       []models.PageButton{},
		UpdatedByName: uname,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create page failed", err, "Impossible de créer la page.", "/intranet/edition")
		return
	}
	if !created {
		h.renderList(w, r, "Une page avec cet identifiant existe déjà.", in.Slug, in.Title)
		return
	}
	h.Pages.Invalidate(in.Slug)

	h.Log.Info("page created", zap.String("slug", in.Slug), zap.String("by", uname))
	viewdata.Redirect(w, r, editURL(in.Slug), "created")
}
