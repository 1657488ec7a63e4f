// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/dalemusser/sagov/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false, so ok=true always comes with a valid id.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed id in the session: fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsSignedIn reports whether the request carries a valid intranet user.
func IsSignedIn(r *http.Request) bool {
	_, _, _, ok := UserCtx(r)
	return ok
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// HasAnyRole reports whether the current request's user has any of the given roles.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// CanManageUsers: account management is admin-only.
func CanManageUsers(r *http.Request) bool { return IsAdmin(r) }

// CanConfigureDelivery: only admins see or change the bot token.
func CanConfigureDelivery(r *http.Request) bool { return IsAdmin(r) }

// CanSendNewsletter reports whether the user may trigger a newsletter run.
func CanSendNewsletter(r *http.Request) bool { return IsAdmin(r) }

// CanDeleteUser reports whether the current user may delete target. Admins
// can delete anyone except themselves.
func CanDeleteUser(r *http.Request, target primitive.ObjectID) bool {
	role, _, self, ok := UserCtx(r)
	return ok && role == models.RoleAdmin && target != self
}

// Owns reports whether ownerID is the current user.
func Owns(r *http.Request, ownerID primitive.ObjectID) bool {
	_, _, self, ok := UserCtx(r)
	return ok && ownerID == self
}
