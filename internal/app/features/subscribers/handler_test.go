package subscribers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	"github.com/dalemusser/sagov/internal/app/features/subscribers"
	auditstore "github.com/dalemusser/sagov/internal/app/store/audit"
	subscriberstore "github.com/dalemusser/sagov/internal/app/store/subscribers"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/ratelimit"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	annID = "123456789012345678"
	bobID = "876543210987654321"
)

func newTestHandler(t *testing.T, forms *ratelimit.FormLimiter) (*subscribers.Handler, *mongo.Database, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return subscribers.NewHandler(db, forms, uierrors.NewErrorLogger(logger), nil, logger), db, testutil.NewFixtures(t, db)
}

func TestHandleSubscribe_Success(t *testing.T) {
	h, db, _ := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewFormRequest("/newsletter", url.Values{"discord_id": {annID}, "name": {"Ann"}})
	rec := testutil.NewRecorder()
	h.HandleSubscribe(rec, req)
	rec.AssertRedirect(t, "/newsletter?ok=subscribed")

	exists, err := subscriberstore.New(db).ExistsByDiscordID(ctx, annID)
	if err != nil || !exists {
		t.Errorf("subscriber not stored: exists=%v err=%v", exists, err)
	}
}

func TestHandleSubscribe_RejectsDuplicateAndBadID(t *testing.T) {
	h, db, fx := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateSubscriber(ctx, annID, "Ann")

	cases := []url.Values{
		{"discord_id": {annID}, "name": {"Ann again"}},
		{"discord_id": {"not-a-snowflake"}, "name": {"Eve"}},
		{"discord_id": {bobID}, "name": {""}},
	}
	for _, form := range cases {
		req := testutil.NewFormRequest("/newsletter", form)
		rec := testutil.NewRecorder()
		testutil.RenderSafely(func() { h.HandleSubscribe(rec, req) })
		if rec.Code == http.StatusSeeOther {
			t.Errorf("form %v must not redirect", form)
		}
	}

	n, _ := subscriberstore.New(db).Count(ctx)
	if n != 1 {
		t.Errorf("subscriber count: got %d, want 1", n)
	}
}

func TestHandleSubscribe_RateLimited(t *testing.T) {
	h, _, _ := newTestHandler(t, ratelimit.NewFormLimiter(1, time.Minute))

	req := testutil.NewFormRequest("/newsletter", url.Values{"discord_id": {annID}, "name": {"Ann"}})
	rec := testutil.NewRecorder()
	h.HandleSubscribe(rec, req)
	rec.AssertStatus(t, http.StatusSeeOther)

	req = testutil.NewFormRequest("/newsletter", url.Values{"discord_id": {bobID}, "name": {"Bob"}})
	rec = testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleSubscribe(rec, req) })
	rec.AssertStatus(t, http.StatusTooManyRequests)
}

func TestHandleUnsubscribe_RemovesOnlyMatchingID(t *testing.T) {
	h, db, fx := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateSubscriber(ctx, annID, "Ann")
	fx.CreateSubscriber(ctx, annID, "Ann (duplicate)")
	fx.CreateSubscriber(ctx, bobID, "Bob")

	req := testutil.NewFormRequest("/newsletter/unsubscribe", url.Values{"discord_id": {annID}})
	rec := testutil.NewRecorder()
	h.HandleUnsubscribe(rec, req)
	rec.AssertRedirect(t, "/newsletter/unsubscribe?ok=unsubscribed")

	store := subscriberstore.New(db)
	if exists, _ := store.ExistsByDiscordID(ctx, annID); exists {
		t.Error("every record of the unsubscribed id should be gone")
	}
	if exists, _ := store.ExistsByDiscordID(ctx, bobID); !exists {
		t.Error("other subscribers must be kept")
	}
}

func TestHandleUnsubscribe_UnknownID(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)

	req := testutil.NewFormRequest("/newsletter/unsubscribe", url.Values{"discord_id": {bobID}})
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleUnsubscribe(rec, req) })
	if rec.Code == http.StatusSeeOther {
		t.Error("unknown id must not report success")
	}
}

func TestAdmin_AddAndDelete(t *testing.T) {
	h, db, _ := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewFormRequest("/intranet/newsletter/abonnes", url.Values{"discord_id": {annID}, "name": {"Ann"}})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.HandleAdd(rec, req)
	rec.AssertRedirect(t, "/intranet/newsletter/abonnes?ok=created")

	list, err := subscriberstore.New(db).List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %+v err=%v", list, err)
	}

	req = testutil.NewFormRequest("/intranet/newsletter/abonnes/x/delete", url.Values{})
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", list[0].ID.Hex())
	rec = testutil.NewRecorder()
	h.HandleDelete(rec, req)
	rec.AssertRedirect(t, "/intranet/newsletter/abonnes?ok=deleted")

	req = testutil.NewFormRequest("/intranet/newsletter/abonnes/x/delete", url.Values{})
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", list[0].ID.Hex())
	rec = testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleDelete(rec, req) })
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestAdmin_ImportCSV(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{})
	h := subscribers.NewHandler(db, nil, uierrors.NewErrorLogger(logger), audit, logger)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateSubscriber(ctx, annID, "Ann")

	csv := "discord_id,name\n" + annID + ",Ann\n" + bobID + ",Bob\n"
	req := testutil.NewMultipartRequest("/intranet/newsletter/abonnes/import", "csv", "abonnes.csv", []byte(csv))
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleImport(rec, req) })

	count, _ := subscriberstore.New(db).Count(ctx)
	if count != 2 {
		t.Errorf("subscribers after import: got %d, want 2", count)
	}
	events, _ := auditstore.New(db).Query(ctx, auditstore.QueryFilter{EventType: auditstore.EventSubscribersImported})
	if len(events) != 1 || events[0].Details["added"] != "1" || events[0].Details["skipped"] != "1" {
		t.Errorf("unexpected import events: %+v", events)
	}
}

func TestAdmin_ImportCSV_BadFileChangesNothing(t *testing.T) {
	h, db, _ := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	csv := bobID + ",Bob\nnot-an-id,Eve\n"
	req := testutil.NewMultipartRequest("/intranet/newsletter/abonnes/import", "csv", "abonnes.csv", []byte(csv))
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleImport(rec, req) })

	count, _ := subscriberstore.New(db).Count(ctx)
	if count != 0 {
		t.Errorf("a rejected file must not add anyone, got %d", count)
	}
}

func TestAdmin_ExportCSV(t *testing.T) {
	h, _, fx := newTestHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateSubscriber(ctx, annID, "Ann")
	fx.CreateSubscriber(ctx, bobID, "Bob")

	req := testutil.WithUser(testutil.NewRequest(http.MethodGet, "/intranet/newsletter/abonnes/export.csv"), testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.ServeExport(rec, req)

	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type: %q", ct)
	}
	rec.AssertContains(t, "discord_id,name,subscribed_at")
	rec.AssertContains(t, annID+",Ann,")
	rec.AssertContains(t, bobID+",Bob,")
}
