// internal/app/features/edition/routes.go
package edition

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the editor router. Mount it at /intranet/edition; every
// signed-in user may edit content.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/new", h.HandleNew)

	r.Route("/{slug}", func(pr chi.Router) {
		pr.Get("/", h.ServeEdit)
		pr.Post("/", h.HandleSave)

		pr.Post("/sections/add", h.HandleAddSection)
		pr.Post("/sections/{id}/update", h.HandleUpdateSection)
		pr.Post("/sections/{id}/move", h.HandleMoveSection)
		pr.Post("/sections/{id}/remove", h.HandleRemoveSection)

		pr.Post("/images/add", h.HandleAddImage)
		pr.Post("/images/remove", h.HandleRemoveImage)
		pr.Post("/carousel/add", h.HandleAddCarouselImage)
		pr.Post("/carousel/remove", h.HandleRemoveCarouselImage)

		pr.Post("/buttons/add", h.HandleAddButton)
		pr.Post("/buttons/{id}/update", h.HandleUpdateButton)
		pr.Post("/buttons/{id}/move", h.HandleMoveButton)
		pr.Post("/buttons/{id}/remove", h.HandleRemoveButton)

		pr.Post("/economy/add", h.HandleAddRow)
		pr.Post("/economy/{id}/update", h.HandleUpdateRow)
		pr.Post("/economy/{id}/remove", h.HandleRemoveRow)
	})
	return r
}
