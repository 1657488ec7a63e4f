package orgchart_test

import (
	"net/http"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/features/orgchart"
	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	"github.com/dalemusser/sagov/internal/app/system/pagecache"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*orgchart.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	cache := pagecache.New(pagestore.New(db), 8, 0)
	return orgchart.NewHandler(db, cache, uierrors.NewErrorLogger(logger), logger), db
}

func post(path string, form url.Values, id string) *http.Request {
	req := testutil.NewFormRequest("/intranet/organigramme"+path, form)
	req = testutil.WithUser(req, testutil.StaffUser())
	if id != "" {
		req = testutil.WithChiURLParam(req, "id", id)
	}
	return req
}

func members(t *testing.T, db *mongo.Database) []models.OrgMember {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	p, err := pagestore.New(db).GetBySlug(ctx, models.PageOrgChart)
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	return p.OrgMembers
}

func seedChart(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreatePage(ctx, models.PageContent{
		Slug: models.PageOrgChart,
		OrgMembers: []models.OrgMember{
			{ID: "gov", Name: "Ann", Position: "Gouverneure", Level: 0, Order: 0},
			{ID: "sec", Name: "Bob", Position: "Secrétaire", ParentID: "gov", Level: 1, Order: 0},
			{ID: "tre", Name: "Cy", Position: "Trésorier", ParentID: "gov", Level: 1, Order: 1},
		},
	})
}

func TestHandleAdd_CreatesPageOnFirstMember(t *testing.T) {
	h, db := newHandler(t)

	rec := testutil.NewRecorder()
	h.HandleAdd(rec, post("/add", url.Values{"name": {"Ann"}, "position": {"Gouverneure"}}, ""))
	rec.AssertRedirect(t, "/intranet/organigramme?ok=saved")

	ms := members(t, db)
	if len(ms) != 1 || ms[0].Level != 0 || ms[0].Order != 0 {
		t.Errorf("unexpected members: %+v", ms)
	}
}

func TestHandleAdd_UnderParent(t *testing.T) {
	h, db := newHandler(t)
	seedChart(t, db)

	rec := testutil.NewRecorder()
	h.HandleAdd(rec, post("/add", url.Values{"name": {"Dee"}, "position": {"Adjointe"}, "parent_id": {"sec"}}, ""))
	rec.AssertStatus(t, http.StatusSeeOther)

	var found bool
	for _, m := range members(t, db) {
		if m.Name == "Dee" {
			found = true
			if m.ParentID != "sec" || m.Level != 2 {
				t.Errorf("new member placement: %+v", m)
			}
		}
	}
	if !found {
		t.Error("member not saved")
	}
}

func TestHandleAdd_UnknownParent(t *testing.T) {
	h, db := newHandler(t)
	seedChart(t, db)

	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() {
		h.HandleAdd(rec, post("/add", url.Values{"name": {"X"}, "position": {"Y"}, "parent_id": {"ghost"}}, ""))
	})
	if rec.Code == http.StatusSeeOther {
		t.Fatal("unknown parent must not redirect")
	}
	if n := len(members(t, db)); n != 3 {
		t.Errorf("members: got %d, want 3", n)
	}
}

func TestHandleRemove_RefusesWithChildren(t *testing.T) {
	h, db := newHandler(t)
	seedChart(t, db)

	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleRemove(rec, post("/gov/remove", url.Values{}, "gov")) })
	if rec.Code == http.StatusSeeOther {
		t.Fatal("removing a member with dependents must fail")
	}
	if n := len(members(t, db)); n != 3 {
		t.Errorf("members: got %d, want 3", n)
	}

	rec = testutil.NewRecorder()
	h.HandleRemove(rec, post("/tre/remove", url.Values{}, "tre"))
	rec.AssertStatus(t, http.StatusSeeOther)
	if n := len(members(t, db)); n != 2 {
		t.Errorf("members after leaf removal: got %d, want 2", n)
	}
}

func TestHandleReparent_RejectsCycle(t *testing.T) {
	h, db := newHandler(t)
	seedChart(t, db)

	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() {
		h.HandleReparent(rec, post("/gov/parent", url.Values{"parent_id": {"sec"}}, "gov"))
	})
	if rec.Code == http.StatusSeeOther {
		t.Fatal("cycle must be rejected")
	}
	for _, m := range members(t, db) {
		if m.ID == "gov" && m.ParentID != "" {
			t.Errorf("gov reparented: %+v", m)
		}
	}
}

func TestHandleReparent_ToTop(t *testing.T) {
	h, db := newHandler(t)
	seedChart(t, db)

	rec := testutil.NewRecorder()
	h.HandleReparent(rec, post("/tre/parent", url.Values{"parent_id": {""}}, "tre"))
	rec.AssertStatus(t, http.StatusSeeOther)

	for _, m := range members(t, db) {
		if m.ID == "tre" && (m.ParentID != "" || m.Level != 0 || m.Order != 1) {
			t.Errorf("tre after reparent: %+v", m)
		}
	}
}

func TestHandleMove_SwapsSiblings(t *testing.T) {
	h, db := newHandler(t)
	seedChart(t, db)

	rec := testutil.NewRecorder()
	h.HandleMove(rec, post("/tre/move", url.Values{"dir": {"up"}}, "tre"))
	rec.AssertStatus(t, http.StatusSeeOther)

	for _, m := range members(t, db) {
		switch m.ID {
		case "tre":
			if m.Order != 0 {
				t.Errorf("tre order: got %d, want 0", m.Order)
			}
		case "sec":
			if m.Order != 1 {
				t.Errorf("sec order: got %d, want 1", m.Order)
			}
		}
	}
}

func TestHandleUpdate(t *testing.T) {
	h, db := newHandler(t)
	seedChart(t, db)

	rec := testutil.NewRecorder()
	h.HandleUpdate(rec, post("/sec/update", url.Values{
		"name": {"Bobby"}, "position": {"Secrétaire d'État"}, "photo": {"/static/img/bob.png"},
	}, "sec"))
	rec.AssertStatus(t, http.StatusSeeOther)

	for _, m := range members(t, db) {
		if m.ID == "sec" && (m.Name != "Bobby" || m.Photo != "/static/img/bob.png" || m.Level != 1) {
			t.Errorf("sec after update: %+v", m)
		}
	}

	rec = testutil.NewRecorder()
	testutil.RenderSafely(func() {
		h.HandleUpdate(rec, post("/sec/update", url.Values{"name": {""}, "position": {"x"}}, "sec"))
	})
	if rec.Code == http.StatusSeeOther {
		t.Error("blank name must be rejected")
	}
}

func TestMutate_RefusesInconsistentChart(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreatePage(ctx, models.PageContent{
		Slug: models.PageOrgChart,
		OrgMembers: []models.OrgMember{
			{ID: "gov", Name: "Ann", Position: "Gouverneure", Level: 0, Order: 0},
			{ID: "sec", Name: "Bob", Position: "Secrétaire", ParentID: "gov", Level: 1, Order: 0},
			{ID: "tre", Name: "Cy", Position: "Trésorier", ParentID: "gov", Level: 1, Order: 0},
		},
	})

	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() {
		h.HandleUpdate(rec, post("/gov/update", url.Values{"name": {"Annie"}, "position": {"Gouverneure"}}, "gov"))
	})
	if rec.Code == http.StatusSeeOther {
		t.Fatal("an inconsistent chart must not be saved")
	}
	for _, m := range members(t, db) {
		if m.ID == "gov" && m.Name != "Ann" {
			t.Errorf("chart changed: %+v", m)
		}
	}
}

func TestHandleReparent_RepairsDriftedLevel(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	testutil.NewFixtures(t, db).CreatePage(ctx, models.PageContent{
		Slug: models.PageOrgChart,
		OrgMembers: []models.OrgMember{
			{ID: "gov", Name: "Ann", Position: "Gouverneure", Level: 0, Order: 0},
			{ID: "sec", Name: "Bob", Position: "Secrétaire", ParentID: "gov", Level: 4, Order: 0},
		},
	})

	rec := testutil.NewRecorder()
	h.HandleReparent(rec, post("/sec/parent", url.Values{"parent_id": {"gov"}}, "sec"))
	rec.AssertStatus(t, http.StatusSeeOther)

	for _, m := range members(t, db) {
		if m.ID == "sec" && m.Level != 1 {
			t.Errorf("sec level: got %d, want 1", m.Level)
		}
	}
}
