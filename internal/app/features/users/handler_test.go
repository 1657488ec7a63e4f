package users_test

import (
	"net/http"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/features/users"
	userstore "github.com/dalemusser/sagov/internal/app/store/users"
	"github.com/dalemusser/sagov/internal/app/system/indexes"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*users.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return users.NewHandler(db, uierrors.NewErrorLogger(logger), nil, logger), testutil.NewFixtures(t, db)
}

func TestHandleCreate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewFormRequest("/intranet/admin/utilisateurs", url.Values{
		"username": {"Marie"}, "password": {"secret123"}, "role": {"admin"},
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)
	rec.AssertRedirect(t, "/intranet/admin/utilisateurs?ok=created")

	u, err := userstore.New(fx.DB()).GetByUsername(ctx, "marie")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role: got %q", u.Role)
	}
}

func TestHandleCreate_Duplicate(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, fx.DB()); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	fx.CreateUser(ctx, "marie", "pw", models.RoleUser)

	req := testutil.NewFormRequest("/intranet/admin/utilisateurs", url.Values{
		"username": {"MARIE"}, "password": {"secret123"},
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleCreate(rec, req) })

	if rec.Code == http.StatusSeeOther {
		t.Error("duplicate username must not redirect")
	}
	if n, _ := userstore.New(fx.DB()).Count(ctx); n != 1 {
		t.Errorf("users: got %d, want 1", n)
	}
}

func TestHandleCreate_BadRole(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewFormRequest("/intranet/admin/utilisateurs", url.Values{
		"username": {"x"}, "password": {"secret123"}, "role": {"superadmin"},
	})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleCreate(rec, req) })

	if rec.Code == http.StatusSeeOther {
		t.Error("unknown role must not redirect")
	}
}

func TestHandleDelete_NotSelf(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	me := fx.CreateAdmin(ctx, "admin", "pw")

	req := testutil.NewFormRequest("/x", url.Values{})
	req = testutil.WithUser(req, testutil.AsTestUser(me))
	req = testutil.WithChiURLParam(req, "id", me.ID.Hex())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleDelete(rec, req) })
	rec.AssertStatus(t, http.StatusForbidden)

	if n, _ := userstore.New(fx.DB()).Count(ctx); n != 1 {
		t.Errorf("users: got %d, want 1", n)
	}
}

func TestHandleDelete_Other(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	me := fx.CreateAdmin(ctx, "admin", "pw")
	other := fx.CreateUser(ctx, "agent", "pw", models.RoleUser)

	req := testutil.NewFormRequest("/x", url.Values{})
	req = testutil.WithUser(req, testutil.AsTestUser(me))
	req = testutil.WithChiURLParam(req, "id", other.ID.Hex())
	rec := testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertRedirect(t, "/intranet/admin/utilisateurs?ok=deleted")

	if n, _ := userstore.New(fx.DB()).Count(ctx); n != 1 {
		t.Errorf("users: got %d, want 1", n)
	}
}
