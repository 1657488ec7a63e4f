// Package pageedit applies the intranet editor's changes to a page document.
// Every operation either fully applies or leaves the page untouched.
package pageedit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/google/uuid"
)

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrButtonNotFound  = errors.New("button not found")
	ErrRowNotFound     = errors.New("economic row not found")
	ErrIndexRange      = errors.New("image index out of range")
	ErrMissingField    = errors.New("required field is empty")
)

// Button colors offered by the editor.
var ButtonColors = []string{"blue", "amber", "green", "red", "gray"}

// DefaultButtonColor is used when none is chosen.
const DefaultButtonColor = "blue"

// Editor mutates one page.
type Editor struct {
	Page *models.PageContent

	// newID is swappable so tests get deterministic ids.
	newID func() string
}

// New returns an Editor over p.
func New(p *models.PageContent) *Editor {
	return &Editor{Page: p, newID: func() string { return uuid.NewString() }}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sections                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (e *Editor) sectionIndex(id string) int {
	for i, s := range e.Page.Sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// AddSection appends a section. Blank layout values get the editor defaults.
func (e *Editor) AddSection(s models.PageSection) models.PageSection {
	s.ID = e.newID()
	if strings.TrimSpace(s.Title) == "" {
		s.Title = "Nouvelle section"
	}
	if s.ImagePosition == "" {
		s.ImagePosition = models.ImageNone
	}
	if s.ImageSize == "" {
		s.ImageSize = models.ImageMedium
	}
	e.Page.Sections = append(e.Page.Sections, s)
	return s
}

// UpdateSection replaces the editable fields of section id.
func (e *Editor) UpdateSection(id string, s models.PageSection) error {
	i := e.sectionIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	s.ID = id
	e.Page.Sections[i] = s
	return nil
}

// RemoveSection deletes section id. Buttons attached to it move to the page footer.
func (e *Editor) RemoveSection(id string) error {
	i := e.sectionIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	e.Page.Sections = append(e.Page.Sections[:i], e.Page.Sections[i+1:]...)
	for j := range e.Page.Buttons {
		if e.Page.Buttons[j].SectionID == id {
			e.Page.Buttons[j].SectionID = ""
		}
	}
	return nil
}

// MoveSection swaps section id with its neighbour. It reports false at either end.
func (e *Editor) MoveSection(id string, up bool) (bool, error) {
	i := e.sectionIndex(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	j := i + 1
	if up {
		j = i - 1
	}
	if j < 0 || j >= len(e.Page.Sections) {
		return false, nil
	}
	e.Page.Sections[i], e.Page.Sections[j] = e.Page.Sections[j], e.Page.Sections[i]
	return true, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Images                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func appendURL(list []string, url string) ([]string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return list, ErrMissingField
	}
	return append(list, url), nil
}

func removeAt(list []string, i int) ([]string, error) {
	if i < 0 || i >= len(list) {
		return list, fmt.Errorf("%w: %d", ErrIndexRange, i)
	}
	out := append([]string(nil), list[:i]...)
	return append(out, list[i+1:]...), nil
}

// AddImage appends an illustration to the page.
func (e *Editor) AddImage(url string) error {
	list, err := appendURL(e.Page.Images, url)
	if err != nil {
		return err
	}
	e.Page.Images = list
	return nil
}

// RemoveImage deletes the illustration at index i.
func (e *Editor) RemoveImage(i int) error {
	list, err := removeAt(e.Page.Images, i)
	if err != nil {
		return err
	}
	e.Page.Images = list
	return nil
}

// AddCarouselImage appends a slide to the home carousel.
func (e *Editor) AddCarouselImage(url string) error {
	list, err := appendURL(e.Page.CarouselImages, url)
	if err != nil {
		return err
	}
	e.Page.CarouselImages = list
	return nil
}

// RemoveCarouselImage deletes the slide at index i.
func (e *Editor) RemoveCarouselImage(i int) error {
	list, err := removeAt(e.Page.CarouselImages, i)
	if err != nil {
		return err
	}
	e.Page.CarouselImages = list
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Buttons                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// sortButtons orders buttons by Order (stable) and renumbers them 0..n-1.
func (e *Editor) sortButtons() {
	sort.SliceStable(e.Page.Buttons, func(i, j int) bool {
		return e.Page.Buttons[i].Order < e.Page.Buttons[j].Order
	})
	for i := range e.Page.Buttons {
		e.Page.Buttons[i].Order = i
	}
}

func (e *Editor) buttonIndex(id string) int {
	for i, b := range e.Page.Buttons {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) checkButton(b models.PageButton) error {
	if strings.TrimSpace(b.Label) == "" || strings.TrimSpace(b.URL) == "" {
		return ErrMissingField
	}
	if b.SectionID != "" && e.sectionIndex(b.SectionID) < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, b.SectionID)
	}
	return nil
}

// AddButton appends a button after the existing ones.
func (e *Editor) AddButton(b models.PageButton) (models.PageButton, error) {
	if err := e.checkButton(b); err != nil {
		return models.PageButton{}, err
	}
	if b.Color == "" {
		b.Color = DefaultButtonColor
	}
	e.sortButtons()
	b.ID = e.newID()
	b.Order = len(e.Page.Buttons)
	e.Page.Buttons = append(e.Page.Buttons, b)
	return b, nil
}

// UpdateButton replaces label, URL, color and section of button id.
func (e *Editor) UpdateButton(id string, b models.PageButton) error {
	i := e.buttonIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrButtonNotFound, id)
	}
	if err := e.checkButton(b); err != nil {
		return err
	}
	if b.Color == "" {
		b.Color = DefaultButtonColor
	}
	b.ID = id
	b.Order = e.Page.Buttons[i].Order
	e.Page.Buttons[i] = b
	return nil
}

// RemoveButton deletes button id and renumbers the rest.
func (e *Editor) RemoveButton(id string) error {
	i := e.buttonIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrButtonNotFound, id)
	}
	e.Page.Buttons = append(e.Page.Buttons[:i], e.Page.Buttons[i+1:]...)
	e.sortButtons()
	return nil
}

// MoveButton swaps button id with its neighbour in display order. It reports
// false at either end.
func (e *Editor) MoveButton(id string, up bool) (bool, error) {
	if e.buttonIndex(id) < 0 {
		return false, fmt.Errorf("%w: %s", ErrButtonNotFound, id)
	}
	e.sortButtons()
	i := e.buttonIndex(id)
	j := i + 1
	if up {
		j = i - 1
	}
	if j < 0 || j >= len(e.Page.Buttons) {
		return false, nil
	}
	bs := e.Page.Buttons
	bs[i], bs[j] = bs[j], bs[i]
	bs[i].Order, bs[j].Order = i, j
	return true, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Economic table                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (e *Editor) rowIndex(id string) int {
	for i, d := range e.Page.EconomicData {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// AddEconomicRow appends a weekly row. The week label is required.
func (e *Editor) AddEconomicRow(d models.EconomicData) (models.EconomicData, error) {
	d.Week = strings.TrimSpace(d.Week)
	if d.Week == "" {
		return models.EconomicData{}, ErrMissingField
	}
	d.ID = e.newID()
	e.Page.EconomicData = append(e.Page.EconomicData, d)
	return d, nil
}

// UpdateEconomicRow replaces week, revenues and expenses of row id.
func (e *Editor) UpdateEconomicRow(id string, d models.EconomicData) error {
	i := e.rowIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	d.Week = strings.TrimSpace(d.Week)
	if d.Week == "" {
		return ErrMissingField
	}
	d.ID = id
	e.Page.EconomicData[i] = d
	return nil
}

// RemoveEconomicRow deletes row id.
func (e *Editor) RemoveEconomicRow(id string) error {
	i := e.rowIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	e.Page.EconomicData = append(e.Page.EconomicData[:i], e.Page.EconomicData[i+1:]...)
	return nil
}
