// internal/app/features/discordadmin/routes.go
package discordadmin

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts at /intranet/admin/discord. Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole("admin"))

	r.Get("/", h.ServeConfig)
	r.Post("/", h.HandleSave)
	return r
}
