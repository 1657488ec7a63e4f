package workers

import (
	"testing"
	"time"

	"github.com/dalemusser/sagov/internal/app/store/audit"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.uber.org/zap"
)

func TestAuditRetention_Prune(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, age := range []time.Duration{100 * 24 * time.Hour, 91 * 24 * time.Hour, 24 * time.Hour} {
		if err := store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: now.Add(-age)}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	w := NewAuditRetention(store, zap.NewNop(), time.Hour, 90*24*time.Hour)
	w.now = func() time.Time { return now }

	if n := w.Prune(); n != 2 {
		t.Errorf("pruned %d, want 2", n)
	}
	if n := w.Prune(); n != 0 {
		t.Errorf("second prune removed %d, want 0", n)
	}
	left, _ := store.CountByFilter(ctx, audit.QueryFilter{})
	if left != 1 {
		t.Errorf("remaining events: got %d, want 1", left)
	}
}

func TestAuditRetention_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	store := audit.New(db)
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: time.Now().Add(-48 * time.Hour)})

	w := NewAuditRetention(store, zap.NewNop(), time.Hour, 24*time.Hour)
	w.Start()
	w.Stop()
	w.Stop()

	// Start prunes once before waiting for the first tick.
	left, _ := store.CountByFilter(ctx, audit.QueryFilter{})
	if left != 0 {
		t.Errorf("remaining events after start: got %d, want 0", left)
	}
}
