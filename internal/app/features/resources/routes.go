// internal/app/features/resources/routes.go
package resources

import (
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the resource list under whatever base path the caller
// chooses (typically "/intranet/ressources" from bootstrap).
//
// Example from bootstrap:
//
//	h := resources.NewHandler(db, errLog, logger)
//	r.Mount("/intranet/ressources", resources.Routes(h, sessionMgr))
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Shared by every intranet user.
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/move", h.HandleMove)
		pr.Post("/{id}/delete", h.HandleDelete)
	})

	return r
}
