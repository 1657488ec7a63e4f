// internal/app/features/subscribers/routes.go
package subscribers

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// AdminRoutes mounts at /intranet/newsletter/abonnes. Admin only.
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole("admin"))

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAdd)
	r.Post("/import", h.HandleImport)
	r.Get("/export.csv", h.ServeExport)
	r.Post("/{id}/delete", h.HandleDelete)
	return r
}

// PublicRoutes mounts at /newsletter.
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeSubscribe)
	r.Post("/", h.HandleSubscribe)
	r.Get("/unsubscribe", h.ServeUnsubscribe)
	r.Post("/unsubscribe", h.HandleUnsubscribe)
	return r
}
