// internal/app/features/edition/edit.go
package edition

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/dalemusser/sagov/internal/app/pageedit"
	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

type buttonRow struct {
	models.PageButton
	SectionTitle string
}

type economicRow struct {
	models.EconomicData
	Balance float64
}

type editVM struct {
	viewdata.BaseVM
	Slug      string
	PageTitle string
	Content   string
	PublicURL string

	Images   []string
	Carousel []string
	Sections []models.PageSection
	Buttons  []buttonRow
	Rows     []economicRow

	ShowCarousel bool
	ShowEconomy  bool
	IsOrgChart   bool

	Colors    []string
	Positions []string
	Sizes     []string

	Error string
}

type pageInput struct {
	Title string `validate:"required,max=200" label:"Titre de la page"`
}

// ServeEdit displays the editor for one page.
// GET /intranet/edition/{slug}
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	slug := pagestore.NormalizeSlug(chi.URLParam(r, "slug"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := pagestore.New(h.DB).GetBySlug(ctx, slug)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.ErrLog.LogNotFound(w, r, "edit unknown page", err, "Page introuvable.", "/intranet/edition")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load page failed", err, "Impossible de charger la page.", "/intranet/edition")
		return
	}

	h.renderEdit(w, r, page, "")
}

// HandleSave updates the page title and main content.
// POST /intranet/edition/{slug}
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "save", func(e *pageedit.Editor) error {
		in := pageInput{Title: strings.TrimSpace(r.FormValue("page_title"))}
		if res := inputval.Validate(in); res.HasErrors() {
			return formError(res.First())
		}
		e.Page.Title = in.Title
		e.Page.Content = cleanHTML(r.FormValue("content"))
		return nil
	})
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, page models.PageContent, errMsg string) {
	titles := sectionTitles(page)

	buttons := make([]buttonRow, 0, len(page.Buttons))
	for _, b := range page.Buttons {
		buttons = append(buttons, buttonRow{PageButton: b, SectionTitle: titles[b.SectionID]})
	}
	sort.SliceStable(buttons, func(i, j int) bool { return buttons[i].Order < buttons[j].Order })

	rows := make([]economicRow, 0, len(page.EconomicData))
	for _, d := range page.EconomicData {
		rows = append(rows, economicRow{EconomicData: d, Balance: d.Balance()})
	}

	title := page.Title
	if title == "" {
		title = page.Slug
	}

	templates.Render(w, r, "edition_edit", editVM{
		BaseVM:       viewdata.NewBaseVM(r, "Modifier : "+title, "/intranet/edition"),
		Slug:         page.Slug,
		PageTitle:    page.Title,
		Content:      page.Content,
		PublicURL:    PublicURL(page.Slug),
		Images:       page.Images,
		Carousel:     page.CarouselImages,
		Sections:     page.Sections,
		Buttons:      buttons,
		Rows:         rows,
		ShowCarousel: page.Slug == models.PageHome || len(page.CarouselImages) > 0,
		ShowEconomy:  page.Slug == models.PageEconomy || len(page.EconomicData) > 0,
		IsOrgChart:   page.Slug == models.PageOrgChart,
		Colors:       pageedit.ButtonColors,
		Positions:    []string{models.ImageNone, models.ImageLeft, models.ImageRight},
		Sizes:        []string{models.ImageSmall, models.ImageMedium, models.ImageLarge},
		Error:        errMsg,
	})
}
