// internal/app/features/todo/routes.go
package todo

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /intranet/todo.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/toggle", h.HandleToggle)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}
