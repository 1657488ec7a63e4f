// Package gates holds per-handler authorization checks for routes whose group
// middleware admits more roles than a single action allows. The newsletter
// routes, for example, are open to every signed-in user while sending is
// reserved to admins.
//
// Routes guarded by sm.RequireRole("admin") need no gate; use authz.UserCtx
// there instead.
package gates

import (
	"net/http"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"github.com/dalemusser/sagov/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result is the signed-in user a gate let through. OK is false when the
// gate already wrote an error page.
type Result struct {
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAdmin lets admins through. Anonymous callers get the unauthorized
// page, other users the forbidden page with msg and a link back to fallback.
func RequireAdmin(w http.ResponseWriter, r *http.Request, msg, fallback string) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return Result{}
	}
	if role != models.RoleAdmin {
		uierrors.RenderForbidden(w, r, msg, fallback)
		return Result{}
	}
	return Result{Name: name, UserID: uid, OK: true}
}
