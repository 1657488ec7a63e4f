// internal/app/features/edition/buttons.go
package edition

import (
	"net/http"
	"strings"

	"github.com/dalemusser/sagov/internal/app/pageedit"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type buttonInput struct {
	Label string `validate:"required,max=80" label:"Libellé"`
	URL   string `validate:"required,urlorpath" label:"Lien"`
	Color string `validate:"required,oneof=blue amber green red gray" label:"Couleur"`
}

func readButton(r *http.Request) (models.PageButton, error) {
	in := buttonInput{
		Label: strings.TrimSpace(r.FormValue("label")),
		URL:   strings.TrimSpace(r.FormValue("url")),
		Color: r.FormValue("color"),
	}
	if in.Color == "" {
		in.Color = pageedit.DefaultButtonColor
	}
	if res := inputval.Validate(in); res.HasErrors() {
		return models.PageButton{}, formError(res.First())
	}
	return models.PageButton{
		Label:     in.Label,
		URL:       in.URL,
		Color:     in.Color,
		SectionID: strings.TrimSpace(r.FormValue("section_id")),
	}, nil
}

// HandleAddButton appends a call-to-action button.
func (h *Handler) HandleAddButton(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "button.add", func(e *pageedit.Editor) error {
		b, err := readButton(r)
		if err != nil {
			return err
		}
		_, err = e.AddButton(b)
		return err
	})
}

// HandleUpdateButton saves one button's fields.
func (h *Handler) HandleUpdateButton(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "button.update", func(e *pageedit.Editor) error {
		b, err := readButton(r)
		if err != nil {
			return err
		}
		return e.UpdateButton(id, b)
	})
}

// HandleMoveButton moves a button up or down in display order.
func (h *Handler) HandleMoveButton(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "button.move", func(e *pageedit.Editor) error {
		_, err := e.MoveButton(id, movesUp(r))
		return err
	})
}

// HandleRemoveButton deletes a button.
func (h *Handler) HandleRemoveButton(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "button.remove", func(e *pageedit.Editor) error {
		return e.RemoveButton(id)
	})
}
