package todo_test

import (
	"net/http"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/features/todo"
	taskstore "github.com/dalemusser/sagov/internal/app/store/tasks"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*todo.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return todo.NewHandler(db, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func TestHandleCreate_OwnedByViewer(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	user := fx.CreateUser(ctx, "agent", "pw", models.RoleUser)

	req := testutil.NewFormRequest("/intranet/todo", url.Values{"title": {"Préparer le discours"}})
	req = testutil.WithUser(req, testutil.AsTestUser(user))
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)
	rec.AssertRedirect(t, "/intranet/todo")

	tasks, err := taskstore.New(fx.DB()).ListForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != models.TaskPending {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
}

func TestHandleCreate_BlankTitle(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewFormRequest("/intranet/todo", url.Values{"title": {"  "}})
	req = testutil.WithUser(req, testutil.StaffUser())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleCreate(rec, req) })

	if rec.Code == http.StatusSeeOther {
		t.Error("blank title must not redirect")
	}
}

func TestHandleToggle_OnlyOwner(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "owner", "pw", models.RoleUser)
	other := fx.CreateUser(ctx, "other", "pw", models.RoleUser)
	task := fx.CreateTask(ctx, "t", owner.ID)

	req := testutil.NewFormRequest("/intranet/todo/x/toggle", url.Values{})
	req = testutil.WithUser(req, testutil.AsTestUser(other))
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleToggle(rec, req) })
	rec.AssertStatus(t, http.StatusNotFound)

	req = testutil.NewFormRequest("/intranet/todo/x/toggle", url.Values{})
	req = testutil.WithUser(req, testutil.AsTestUser(owner))
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleToggle(rec, req)
	rec.AssertStatus(t, http.StatusSeeOther)

	n, _ := taskstore.New(fx.DB()).CountPending(ctx, owner.ID)
	if n != 0 {
		t.Errorf("pending after toggle: %d", n)
	}
}

func TestHandleDelete_OnlyOwner(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "owner", "pw", models.RoleUser)
	task := fx.CreateTask(ctx, "t", owner.ID)

	req := testutil.NewFormRequest("/intranet/todo/x/delete", url.Values{})
	req = testutil.WithUser(req, testutil.StaffUser())
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleDelete(rec, req) })
	rec.AssertStatus(t, http.StatusNotFound)

	req = testutil.NewFormRequest("/intranet/todo/x/delete", url.Values{})
	req = testutil.WithUser(req, testutil.AsTestUser(owner))
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertStatus(t, http.StatusSeeOther)
}
