// internal/app/features/agenda/routes.go
package agenda

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /intranet/agenda.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}
