// internal/app/features/orgchart/routes.go
package orgchart

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /intranet/organigramme.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeEditor)
	r.Post("/add", h.HandleAdd)
	r.Post("/{id}/update", h.HandleUpdate)
	r.Post("/{id}/parent", h.HandleReparent)
	r.Post("/{id}/move", h.HandleMove)
	r.Post("/{id}/remove", h.HandleRemove)
	return r
}
