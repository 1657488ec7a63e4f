// internal/app/features/site/view.go
package site

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/sagov/internal/app/orgtree"
	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

// load fetches slug through the cache. It renders the error page itself and
// reports false when the page cannot be shown.
func (h *Handler) load(w http.ResponseWriter, r *http.Request, slug string) (models.PageContent, bool) {
	if !pagestore.ValidSlug(pagestore.NormalizeSlug(slug)) {
		h.ErrLog.LogNotFound(w, r, "invalid page slug", nil, "", "/")
		return models.PageContent{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Pages.Get(ctx, slug)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "page not found", err, "", "/")
		return models.PageContent{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load page failed", err, "Impossible de charger la page.", "/")
		return models.PageContent{}, false
	}
	return page, true
}

// ServeHome displays the home page with its carousel.
// GET /
func (h *Handler) ServeHome(w http.ResponseWriter, r *http.Request) {
	page, ok := h.load(w, r, models.PageHome)
	if !ok {
		return
	}
	vm := newPageVM(viewdata.NewBaseVM(r, page.Title, "/"), page)
	templates.Render(w, r, "site_home", vm)
}

// ServePage displays any page by slug.
// GET /p/{slug}
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	switch pagestore.NormalizeSlug(slug) {
	case models.PageHome:
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
		return
	case models.PageOrgChart:
		http.Redirect(w, r, "/organigramme", http.StatusMovedPermanently)
		return
	case models.PageEconomy:
		http.Redirect(w, r, "/economie", http.StatusMovedPermanently)
		return
	case models.PageForms:
		http.Redirect(w, r, "/intranet/formulaires", http.StatusMovedPermanently)
		return
	}

	page, ok := h.load(w, r, slug)
	if !ok {
		return
	}
	vm := newPageVM(viewdata.NewBaseVM(r, page.Title, "/"), page)
	templates.Render(w, r, "site_page", vm)
}

// ServeForms lists the administrative forms: one section per form, each
// with a button to the external form.
// GET /intranet/formulaires
func (h *Handler) ServeForms(w http.ResponseWriter, r *http.Request) {
	page, ok := h.load(w, r, models.PageForms)
	if !ok {
		return
	}
	vm := newPageVM(viewdata.NewBaseVM(r, page.Title, "/intranet"), page)
	templates.Render(w, r, "site_page", vm)
}

// ServeOrgChart displays the organization chart, one row per level.
// GET /organigramme
func (h *Handler) ServeOrgChart(w http.ResponseWriter, r *http.Request) {
	page, ok := h.load(w, r, models.PageOrgChart)
	if !ok {
		return
	}
	vm := orgChartVM{
		pageVM: newPageVM(viewdata.NewBaseVM(r, page.Title, "/"), page),
		Levels: orgLevels(orgtree.New(page.OrgMembers).Sorted()),
	}
	vm.EditURL = "/intranet/organigramme"
	templates.Render(w, r, "site_orgchart", vm)
}

// ServeEconomy displays the weekly budget table with balances and totals.
// GET /economie
func (h *Handler) ServeEconomy(w http.ResponseWriter, r *http.Request) {
	page, ok := h.load(w, r, models.PageEconomy)
	if !ok {
		return
	}
	rows, rev, exp := economyRows(page.EconomicData)
	vm := economyVM{
		pageVM:        newPageVM(viewdata.NewBaseVM(r, page.Title, "/"), page),
		Rows:          rows,
		TotalRevenues: rev,
		TotalExpenses: exp,
		TotalBalance:  rev - exp,
	}
	templates.Render(w, r, "site_economy", vm)
}
