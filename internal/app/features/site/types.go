// internal/app/features/site/types.go
package site

import (
	"html/template"
	"sort"

	"github.com/dalemusser/sagov/internal/app/system/htmlsanitize"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/sagov/internal/domain/models"
)

type sectionVM struct {
	ID            string
	Title         string
	Content       template.HTML
	Image         string
	ImagePosition string
	ImageSize     string
	Buttons       []models.PageButton
}

type pageVM struct {
	viewdata.BaseVM
	Slug     string
	Content  template.HTML
	Images   []string
	Carousel []string
	Sections []sectionVM
	Buttons  []models.PageButton
	CanEdit  bool
	EditURL  string
}

type orgLevelVM struct {
	Level   int
	Members []models.OrgMember
}

type orgChartVM struct {
	pageVM
	Levels []orgLevelVM
}

type economyRowVM struct {
	Week     string
	Revenues float64
	Expenses float64
	Balance  float64
}

type economyVM struct {
	pageVM
	Rows          []economyRowVM
	TotalRevenues float64
	TotalExpenses float64
	TotalBalance  float64
}

// sortedButtons returns buttons ordered by Order; ties keep stored order.
func sortedButtons(in []models.PageButton) []models.PageButton {
	out := append([]models.PageButton(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// newPageVM splits buttons between their sections and the page footer and
// prepares stored HTML for display.
func newPageVM(base viewdata.BaseVM, p models.PageContent) pageVM {
	bySection := make(map[string][]models.PageButton)
	var loose []models.PageButton
	for _, b := range sortedButtons(p.Buttons) {
		if b.SectionID != "" {
			bySection[b.SectionID] = append(bySection[b.SectionID], b)
			continue
		}
		loose = append(loose, b)
	}

	sections := make([]sectionVM, 0, len(p.Sections))
	for _, s := range p.Sections {
		pos := s.ImagePosition
		if s.Image == "" {
			pos = models.ImageNone
		}
		sections = append(sections, sectionVM{
			ID:            s.ID,
			Title:         s.Title,
			Content:       htmlsanitize.PrepareForDisplay(s.Content),
			Image:         s.Image,
			ImagePosition: pos,
			ImageSize:     s.ImageSize,
			Buttons:       bySection[s.ID],
		})
	}

	return pageVM{
		BaseVM:   base,
		Slug:     p.Slug,
		Content:  htmlsanitize.PrepareForDisplay(p.Content),
		Images:   p.Images,
		Carousel: p.CarouselImages,
		Sections: sections,
		Buttons:  loose,
		CanEdit:  base.IsLoggedIn,
		EditURL:  "/intranet/edition/" + p.Slug,
	}
}

// orgLevels groups the chart by level, each level in sibling order.
func orgLevels(sorted []models.OrgMember) []orgLevelVM {
	var out []orgLevelVM
	for _, m := range sorted {
		if len(out) == 0 || out[len(out)-1].Level != m.Level {
			out = append(out, orgLevelVM{Level: m.Level})
		}
		last := &out[len(out)-1]
		last.Members = append(last.Members, m)
	}
	return out
}

// economyRows derives balances and totals.
func economyRows(data []models.EconomicData) ([]economyRowVM, float64, float64) {
	rows := make([]economyRowVM, 0, len(data))
	var rev, exp float64
	for _, d := range data {
		rows = append(rows, economyRowVM{
			Week:     d.Week,
			Revenues: d.Revenues,
			Expenses: d.Expenses,
			Balance:  d.Balance(),
		})
		rev += d.Revenues
		exp += d.Expenses
	}
	return rows, rev, exp
}
