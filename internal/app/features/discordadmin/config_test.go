package discordadmin

import (
	"net/http"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/sagov/internal/app/features/errors"
	discordconfigstore "github.com/dalemusser/sagov/internal/app/store/discordconfig"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.uber.org/zap"
)

func TestMaskToken(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"abc":          "••••",
		"MTIz.secret9": "••••ret9",
	}
	for in, want := range cases {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func newTestHandler(t *testing.T) (*Handler, *discordconfigstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return NewHandler(db, uierrors.NewErrorLogger(logger), nil, logger), discordconfigstore.New(db)
}

func TestHandleSave_EnableWithToken(t *testing.T) {
	h, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewFormRequest(basePath, url.Values{"token": {"bot-token"}, "enabled": {"1"}})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	h.HandleSave(rec, req)
	rec.AssertRedirect(t, basePath+"?ok=saved")

	cfg, _ := store.Current(ctx)
	if !cfg.Usable() || cfg.UpdatedByName != "admin" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestHandleSave_BlankTokenKeepsCurrent(t *testing.T) {
	h, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, form := range []url.Values{
		{"token": {"first"}, "enabled": {"1"}},
		{"token": {""}},
	} {
		req := testutil.NewFormRequest(basePath, form)
		req = testutil.WithUser(req, testutil.AdminUser())
		rec := testutil.NewRecorder()
		h.HandleSave(rec, req)
		rec.AssertStatus(t, http.StatusSeeOther)
	}

	cfg, _ := store.Current(ctx)
	if cfg.Token != "first" || cfg.Enabled {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestHandleSave_EnableWithoutToken(t *testing.T) {
	h, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewFormRequest(basePath, url.Values{"enabled": {"1"}})
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()
	testutil.RenderSafely(func() { h.HandleSave(rec, req) })

	if rec.Code == http.StatusSeeOther {
		t.Error("enabling without a token must not redirect")
	}
	if cfg, _ := store.Current(ctx); cfg.Enabled {
		t.Errorf("delivery enabled without token: %+v", cfg)
	}
}
