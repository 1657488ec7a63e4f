package authz_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/dalemusser/sagov/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestAs(id, role string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	return auth.WithTestUser(req, &auth.SessionUser{ID: id, Name: "Test", Role: role})
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	role, name, id, ok := authz.UserCtx(req)
	if ok || role != "visitor" || name != "" || id != primitive.NilObjectID {
		t.Errorf("unexpected values: %q %q %v %v", role, name, id, ok)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	if _, _, _, ok := authz.UserCtx(requestAs("not-an-id", "admin")); ok {
		t.Error("malformed id must fail closed")
	}
}

func TestUserCtx_LowercasesRole(t *testing.T) {
	id := primitive.NewObjectID()
	role, _, got, ok := authz.UserCtx(requestAs(id.Hex(), "ADMIN"))
	if !ok || role != "admin" || got != id {
		t.Errorf("got role=%q id=%v ok=%v", role, got, ok)
	}
}

func TestAdminPolicies(t *testing.T) {
	admin := requestAs(primitive.NewObjectID().Hex(), "admin")
	user := requestAs(primitive.NewObjectID().Hex(), "user")
	anon := httptest.NewRequest("GET", "/test", nil)

	checks := map[string]func(*http.Request) bool{
		"IsAdmin":              authz.IsAdmin,
		"CanManageUsers":       authz.CanManageUsers,
		"CanConfigureDelivery": authz.CanConfigureDelivery,
		"CanSendNewsletter":    authz.CanSendNewsletter,
	}
	for name, fn := range checks {
		if !fn(admin) {
			t.Errorf("%s: admin should be allowed", name)
		}
		if fn(user) {
			t.Errorf("%s: user should be denied", name)
		}
		if fn(anon) {
			t.Errorf("%s: visitor should be denied", name)
		}
	}
	if !authz.IsSignedIn(user) || authz.IsSignedIn(anon) {
		t.Error("IsSignedIn mismatch")
	}
}

func TestCanDeleteUser_NotSelf(t *testing.T) {
	self := primitive.NewObjectID()
	req := requestAs(self.Hex(), "admin")

	if authz.CanDeleteUser(req, self) {
		t.Error("an admin must not delete their own account")
	}
	if !authz.CanDeleteUser(req, primitive.NewObjectID()) {
		t.Error("an admin should delete other accounts")
	}
	if authz.CanDeleteUser(requestAs(primitive.NewObjectID().Hex(), "user"), primitive.NewObjectID()) {
		t.Error("a user must not delete accounts")
	}
}

func TestOwns(t *testing.T) {
	self := primitive.NewObjectID()
	req := requestAs(self.Hex(), "user")
	if !authz.Owns(req, self) {
		t.Error("expected ownership of own id")
	}
	if authz.Owns(req, primitive.NewObjectID()) {
		t.Error("unexpected ownership of another id")
	}
}

func TestHasAnyRole(t *testing.T) {
	req := requestAs(primitive.NewObjectID().Hex(), "user")
	if !authz.HasAnyRole(req, "admin", " User ") {
		t.Error("expected match on trimmed, case-folded role")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("unexpected match")
	}
}
