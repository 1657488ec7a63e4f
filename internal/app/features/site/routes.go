// internal/app/features/site/routes.go
package site

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the public site router. Mount it at "/".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeHome)
	r.Get("/p/{slug}", h.ServePage)
	r.Get("/organigramme", h.ServeOrgChart)
	r.Get("/economie", h.ServeEconomy)
	return r
}

// FormsRoutes serves the administrative forms page to signed-in users.
// Mount it at "/intranet/formulaires".
func FormsRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeForms)
	return r
}
