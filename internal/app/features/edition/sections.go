// internal/app/features/edition/sections.go
package edition

import (
	"net/http"
	"strings"

	"github.com/dalemusser/sagov/internal/app/pageedit"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type sectionInput struct {
	Title         string `validate:"required,max=200" label:"Titre de section"`
	Image         string `validate:"omitempty,urlorpath" label:"Image"`
	ImagePosition string `validate:"required,oneof=none left right" label:"Position de l'image"`
	ImageSize     string `validate:"required,oneof=small medium large" label:"Taille de l'image"`
}

// HandleAddSection appends an empty section.
func (h *Handler) HandleAddSection(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "section.add", func(e *pageedit.Editor) error {
		e.AddSection(models.PageSection{})
		return nil
	})
}

// HandleUpdateSection saves one section's fields.
func (h *Handler) HandleUpdateSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "section.update", func(e *pageedit.Editor) error {
		in := sectionInput{
			Title:         strings.TrimSpace(r.FormValue("title")),
			Image:         strings.TrimSpace(r.FormValue("image")),
			ImagePosition: r.FormValue("image_position"),
			ImageSize:     r.FormValue("image_size"),
		}
		if res := inputval.Validate(in); res.HasErrors() {
			return formError(res.First())
		}
		return e.UpdateSection(id, models.PageSection{
			Title:         in.Title,
			Content:       cleanHTML(r.FormValue("content")),
			Image:         in.Image,
			ImagePosition: in.ImagePosition,
			ImageSize:     in.ImageSize,
		})
	})
}

// HandleMoveSection moves a section up or down.
func (h *Handler) HandleMoveSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "section.move", func(e *pageedit.Editor) error {
		_, err := e.MoveSection(id, movesUp(r))
		return err
	})
}

// HandleRemoveSection deletes a section.
func (h *Handler) HandleRemoveSection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.mutate(w, r, "section.remove", func(e *pageedit.Editor) error {
		return e.RemoveSection(id)
	})
}
