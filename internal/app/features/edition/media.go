// internal/app/features/edition/media.go
package edition

import (
	"net/http"
	"strings"

	"github.com/dalemusser/sagov/internal/app/pageedit"
	"github.com/dalemusser/sagov/internal/app/system/inputval"
)

type imageInput struct {
	URL string `validate:"required,urlorpath" label:"URL de l'image"`
}

func readImage(r *http.Request) (string, error) {
	in := imageInput{URL: strings.TrimSpace(r.FormValue("url"))}
	if res := inputval.Validate(in); res.HasErrors() {
		return "", formError(res.First())
	}
	return in.URL, nil
}

// HandleAddImage appends a page illustration.
func (h *Handler) HandleAddImage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "image.add", func(e *pageedit.Editor) error {
		url, err := readImage(r)
		if err != nil {
			return err
		}
		return e.AddImage(url)
	})
}

// HandleRemoveImage deletes the illustration at the posted index.
func (h *Handler) HandleRemoveImage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "image.remove", func(e *pageedit.Editor) error {
		i, err := formIndex(r, "index")
		if err != nil {
			return err
		}
		return e.RemoveImage(i)
	})
}

// HandleAddCarouselImage appends a carousel slide.
func (h *Handler) HandleAddCarouselImage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "carousel.add", func(e *pageedit.Editor) error {
		url, err := readImage(r)
		if err != nil {
			return err
		}
		return e.AddCarouselImage(url)
	})
}

// HandleRemoveCarouselImage deletes the slide at the posted index.
func (h *Handler) HandleRemoveCarouselImage(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "carousel.remove", func(e *pageedit.Editor) error {
		i, err := formIndex(r, "index")
		if err != nil {
			return err
		}
		return e.RemoveCarouselImage(i)
	})
}
