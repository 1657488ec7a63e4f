// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the journal at /intranet/admin/journal. Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin"))

		pr.Get("/", h.ServeList)
	})

	return r
}
