package edition_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/sagov/internal/app/features/edition"
	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	pagestore "github.com/dalemusser/sagov/internal/app/store/pages"
	"github.com/dalemusser/sagov/internal/app/system/pagecache"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	h     *edition.Handler
	db    *mongo.Database
	cache *pagecache.Cache
	fx    *testutil.Fixtures
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	cache := pagecache.New(pagestore.New(db), 8, 0)
	h := edition.NewHandler(db, cache, uierrors.NewErrorLogger(logger), logger)
	return env{h: h, db: db, cache: cache, fx: testutil.NewFixtures(t, db)}
}

func post(slug, path string, form url.Values, params ...string) *http.Request {
	req := testutil.NewFormRequest("/intranet/edition/"+slug+path, form)
	req = testutil.WithUser(req, testutil.StaffUser())
	req = testutil.WithChiURLParam(req, "slug", slug)
	for i := 0; i+1 < len(params); i += 2 {
		req = testutil.WithChiURLParam(req, params[i], params[i+1])
	}
	return req
}

func (e env) load(t *testing.T, slug string) models.PageContent {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	p, err := pagestore.New(e.db).GetBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("GetBySlug(%q) failed: %v", slug, err)
	}
	return p
}

func TestHandleNew_CreatesPage(t *testing.T) {
	e := newEnv(t)

	req := testutil.NewFormRequest("/intranet/edition/new", url.Values{"slug": {"Services"}, "title": {"Services publics"}})
	req = testutil.WithUser(req, testutil.StaffUser())
	rec := testutil.NewRecorder()
	e.h.HandleNew(rec, req)

	rec.AssertRedirect(t, "/intranet/edition/services?ok=created")
	p := e.load(t, "services")
	if p.Title != "Services publics" || p.UpdatedByName != "agent" {
		t.Errorf("unexpected page: %+v", p)
	}
}

func TestHandleNew_DuplicateSlug(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: "services", Title: "Original"})

	req := testutil.NewFormRequest("/intranet/edition/new", url.Values{"slug": {"services"}, "title": {"Autre"}})
	req = testutil.WithUser(req, testutil.StaffUser())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { e.h.HandleNew(rec, req) })

	if rec.Code == http.StatusSeeOther {
		t.Fatal("duplicate slug must not redirect")
	}
	if p := e.load(t, "services"); p.Title != "Original" {
		t.Errorf("existing page overwritten: %q", p.Title)
	}
}

func TestHandleSave_SanitizesContent(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: "services", Title: "Old"})

	rec := testutil.NewRecorder()
	e.h.HandleSave(rec, post("services", "", url.Values{
		"page_title": {"Nouveau"},
		"content":    {`<p>Bonjour</p><script>alert(1)</script>`},
	}))

	rec.AssertRedirect(t, "/intranet/edition/services?ok=saved")
	p := e.load(t, "services")
	if p.Title != "Nouveau" {
		t.Errorf("title: got %q", p.Title)
	}
	if strings.Contains(p.Content, "script") || !strings.Contains(p.Content, "Bonjour") {
		t.Errorf("content not sanitized: %q", p.Content)
	}
}

func TestHandleSave_PlainTextKept(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: "services", Title: "Old"})

	rec := testutil.NewRecorder()
	e.h.HandleSave(rec, post("services", "", url.Values{
		"page_title": {"T"},
		"content":    {"Horaires : 9h < 18h"},
	}))

	rec.AssertStatus(t, http.StatusSeeOther)
	if p := e.load(t, "services"); p.Content != "Horaires : 9h < 18h" {
		t.Errorf("plain text altered: %q", p.Content)
	}
}

func TestHandleSave_MissingTitle(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: "services", Title: "Old", Content: "keep"})

	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() {
		e.h.HandleSave(rec, post("services", "", url.Values{"page_title": {" "}, "content": {"changed"}}))
	})

	if rec.Code == http.StatusSeeOther {
		t.Fatal("invalid form must not redirect")
	}
	if p := e.load(t, "services"); p.Title != "Old" || p.Content != "keep" {
		t.Errorf("page changed on validation failure: %+v", p)
	}
}

func TestHandleSave_UnknownPage(t *testing.T) {
	e := newEnv(t)

	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() {
		e.h.HandleSave(rec, post("absent", "", url.Values{"page_title": {"x"}}))
	})
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestSections_AddUpdateRemove(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: "services", Title: "S"})

	rec := testutil.NewRecorder()
	e.h.HandleAddSection(rec, post("services", "/sections/add", url.Values{}))
	rec.AssertStatus(t, http.StatusSeeOther)

	p := e.load(t, "services")
	if len(p.Sections) != 1 {
		t.Fatalf("sections: got %d, want 1", len(p.Sections))
	}
	id := p.Sections[0].ID

	rec = testutil.NewRecorder()
	e.h.HandleUpdateSection(rec, post("services", "/sections/"+id+"/update", url.Values{
		"title":          {"Police"},
		"content":        {"Le LSPD recrute."},
		"image":          {"/static/img/lspd.png"},
		"image_position": {"left"},
		"image_size":     {"large"},
	}, "id", id))
	rec.AssertStatus(t, http.StatusSeeOther)

	s := e.load(t, "services").Sections[0]
	if s.Title != "Police" || s.Image != "/static/img/lspd.png" || s.ImagePosition != "left" || s.ImageSize != "large" {
		t.Errorf("section not updated: %+v", s)
	}

	rec = testutil.NewRecorder()
	e.h.HandleRemoveSection(rec, post("services", "/sections/"+id+"/remove", url.Values{}, "id", id))
	rec.AssertStatus(t, http.StatusSeeOther)
	if n := len(e.load(t, "services").Sections); n != 0 {
		t.Errorf("sections after remove: %d", n)
	}
}

func TestHandleUpdateSection_BadPosition(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{
		Slug:     "services",
		Sections: []models.PageSection{{ID: "s1", Title: "A", ImagePosition: "none", ImageSize: "medium"}},
	})

	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() {
		e.h.HandleUpdateSection(rec, post("services", "/sections/s1/update", url.Values{
			"title": {"B"}, "image_position": {"top"}, "image_size": {"medium"},
		}, "id", "s1"))
	})
	if rec.Code == http.StatusSeeOther {
		t.Fatal("invalid position must not redirect")
	}
	if s := e.load(t, "services").Sections[0]; s.Title != "A" {
		t.Errorf("section changed: %+v", s)
	}
}

func TestHandleRemoveSection_Unknown(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: "services"})

	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() {
		e.h.HandleRemoveSection(rec, post("services", "/sections/nope/remove", url.Values{}, "id", "nope"))
	})
	if rec.Code == http.StatusSeeOther || rec.Code == http.StatusInternalServerError {
		t.Errorf("unknown section: got %d, want the editor re-rendered", rec.Code)
	}
}

func TestButtons_AddAndValidate(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: "services"})

	rec := testutil.NewRecorder()
	e.h.HandleAddButton(rec, post("services", "/buttons/add", url.Values{
		"label": {"Postuler"}, "url": {"https://discord.gg/sagov"},
	}))
	rec.AssertStatus(t, http.StatusSeeOther)

	p := e.load(t, "services")
	if len(p.Buttons) != 1 || p.Buttons[0].Color != "blue" {
		t.Fatalf("unexpected buttons: %+v", p.Buttons)
	}

	rec = testutil.NewRecorder()
	testutil.RenderSafely(func() {
		e.h.HandleAddButton(rec, post("services", "/buttons/add", url.Values{
			"label": {"Mauvais"}, "url": {"javascript:alert(1)"},
		}))
	})
	if rec.Code == http.StatusSeeOther {
		t.Error("unsafe URL must be rejected")
	}
	if n := len(e.load(t, "services").Buttons); n != 1 {
		t.Errorf("buttons: got %d, want 1", n)
	}
}

func TestHandleMoveButton(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{
		Slug: "services",
		Buttons: []models.PageButton{
			{ID: "a", Label: "A", URL: "/a", Color: "blue", Order: 0},
			{ID: "b", Label: "B", URL: "/b", Color: "blue", Order: 1},
		},
	})

	rec := testutil.NewRecorder()
	e.h.HandleMoveButton(rec, post("services", "/buttons/b/move", url.Values{"dir": {"up"}}, "id", "b"))
	rec.AssertStatus(t, http.StatusSeeOther)

	for _, b := range e.load(t, "services").Buttons {
		if b.ID == "b" && b.Order != 0 {
			t.Errorf("b order: got %d, want 0", b.Order)
		}
	}
}

func TestImages_AddRemove(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: models.PageHome})

	rec := testutil.NewRecorder()
	e.h.HandleAddCarouselImage(rec, post(models.PageHome, "/carousel/add", url.Values{"url": {"https://cdn.example/a.jpg"}}))
	rec.AssertStatus(t, http.StatusSeeOther)
	if p := e.load(t, models.PageHome); len(p.CarouselImages) != 1 {
		t.Fatalf("carousel: %+v", p.CarouselImages)
	}

	rec = testutil.NewRecorder()
	e.h.HandleRemoveCarouselImage(rec, post(models.PageHome, "/carousel/remove", url.Values{"index": {"0"}}))
	rec.AssertStatus(t, http.StatusSeeOther)
	if p := e.load(t, models.PageHome); len(p.CarouselImages) != 0 {
		t.Errorf("carousel after remove: %+v", p.CarouselImages)
	}

	rec = testutil.NewRecorder()
	testutil.RenderSafely(func() {
		e.h.HandleRemoveImage(rec, post(models.PageHome, "/images/remove", url.Values{"index": {"3"}}))
	})
	if rec.Code == http.StatusSeeOther {
		t.Error("out of range index must not redirect")
	}
}

func TestEconomy_AddRowWithComma(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: models.PageEconomy})

	rec := testutil.NewRecorder()
	e.h.HandleAddRow(rec, post(models.PageEconomy, "/economy/add", url.Values{
		"week": {"Semaine 1"}, "revenues": {"1500,50"}, "expenses": {"200"},
	}))
	rec.AssertStatus(t, http.StatusSeeOther)

	rows := e.load(t, models.PageEconomy).EconomicData
	if len(rows) != 1 || rows[0].Revenues != 1500.5 || rows[0].Balance() != 1300.5 {
		t.Errorf("unexpected rows: %+v", rows)
	}
}

func TestMutation_InvalidatesCache(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreatePage(ctx, models.PageContent{Slug: "services", Title: "Old"})

	if _, err := e.cache.Get(ctx, "services"); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	rec := testutil.NewRecorder()
	e.h.HandleSave(rec, post("services", "", url.Values{"page_title": {"New"}, "content": {"x"}}))
	rec.AssertStatus(t, http.StatusSeeOther)

	p, err := e.cache.Get(ctx, "services")
	if err != nil {
		t.Fatalf("cache Get: %v", err)
	}
	if p.Title != "New" {
		t.Errorf("cache served stale title %q", p.Title)
	}
}

func TestPublicURL(t *testing.T) {
	cases := map[string]string{
		models.PageHome:     "/",
		models.PageOrgChart: "/organigramme",
		models.PageEconomy:  "/economie",
		"services":          "/p/services",
	}
	for slug, want := range cases {
		if got := edition.PublicURL(slug); got != want {
			t.Errorf("PublicURL(%q) = %q, want %q", slug, got, want)
		}
	}
}
