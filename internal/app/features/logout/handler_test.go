package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/sagov/internal/app/features/logout"
	auditstore "github.com/dalemusser/sagov/internal/app/store/audit"
	"github.com/dalemusser/sagov/internal/app/system/auditlog"
	"github.com/dalemusser/sagov/internal/app/system/auth"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const cookieName = "sagov-test-session"

func newSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager("logout-test-key-0123456789abcdef0123456789", cookieName, "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return sm
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	return nil
}

func TestServeLogout(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		htmx       bool
		wantStatus int
	}{
		{"get", http.MethodGet, false, http.StatusSeeOther},
		{"post", http.MethodPost, false, http.StatusSeeOther},
		{"htmx", http.MethodPost, true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := logout.NewHandler(newSessionManager(t), nil, zap.NewNop())
			req := httptest.NewRequest(tt.method, "/logout", nil)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			rec := httptest.NewRecorder()

			h.ServeLogout(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.htmx {
				if got := rec.Header().Get("HX-Redirect"); got != "/" {
					t.Errorf("HX-Redirect: got %q", got)
				}
			} else if got := rec.Header().Get("Location"); got != "/" {
				t.Errorf("Location: got %q", got)
			}
			c := sessionCookie(rec)
			if c == nil || c.MaxAge != -1 {
				t.Errorf("expected the session cookie to be deleted, got %+v", c)
			}
		})
	}
}

func TestServeLogout_EndsExistingSession(t *testing.T) {
	sm := newSessionManager(t)
	h := logout.NewHandler(sm, nil, zap.NewNop())

	signIn := httptest.NewRecorder()
	if err := sm.SignIn(signIn, httptest.NewRequest("POST", "/login", nil),
		auth.SessionUser{ID: primitive.NewObjectID().Hex(), Name: "Shérif", Role: "user"}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/logout", nil)
	req.AddCookie(sessionCookie(signIn))
	rec := httptest.NewRecorder()
	h.ServeLogout(rec, req)

	if c := sessionCookie(rec); c == nil || c.MaxAge != -1 {
		t.Errorf("expected the session cookie to be deleted, got %+v", c)
	}
}

func TestServeLogout_RecordsJournalEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events := auditstore.New(db)
	h := logout.NewHandler(newSessionManager(t), auditlog.New(events, zap.NewNop(), auditlog.Config{}), zap.NewNop())

	id := primitive.NewObjectID()
	req := auth.WithTestUser(httptest.NewRequest("POST", "/logout", nil),
		&auth.SessionUser{ID: id.Hex(), Name: "Shérif", Role: "user"})
	h.ServeLogout(httptest.NewRecorder(), req)

	got, err := events.Query(ctx, auditstore.QueryFilter{EventType: auditstore.EventLogout})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one logout event, got %d", len(got))
	}
	if got[0].ActorName != "Shérif" || got[0].ActorID == nil || *got[0].ActorID != id {
		t.Errorf("unexpected actor: %+v", got[0])
	}
}

func TestServeLogout_AnonymousRecordsNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	events := auditstore.New(db)
	h := logout.NewHandler(newSessionManager(t), auditlog.New(events, zap.NewNop(), auditlog.Config{}), zap.NewNop())
	h.ServeLogout(httptest.NewRecorder(), httptest.NewRequest("GET", "/logout", nil))

	if n, _ := events.CountByFilter(ctx, auditstore.QueryFilter{}); n != 0 {
		t.Errorf("expected no events, got %d", n)
	}
}
