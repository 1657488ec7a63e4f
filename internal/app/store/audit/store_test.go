package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/sagov/internal/app/store/audit"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log_AutoGeneratesIDAndTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   &actor,
		ActorName: "mayor",
		IP:        "192.168.1.1",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() || events[0].Timestamp.IsZero() {
		t.Errorf("ID and Timestamp should be set: %+v", events[0])
	}
	if events[0].ActorName != "mayor" {
		t.Errorf("ActorName: got %q", events[0].ActorName)
	}
}

func TestStore_Query_FilterAndOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, Timestamp: base, Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailed, Timestamp: base.Add(time.Minute)},
		{Category: audit.CategoryAdmin, EventType: audit.EventUserCreated, Timestamp: base.Add(2 * time.Minute), Success: true},
		{Category: audit.CategoryNewsletter, EventType: audit.EventNewsletterSent, Timestamp: base.Add(3 * time.Minute), Success: true},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	all, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(all) != 4 || all[0].EventType != audit.EventNewsletterSent {
		t.Errorf("expected newest first, got %+v", all)
	}

	auth, _ := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if len(auth) != 2 {
		t.Errorf("auth events: got %d, want 2", len(auth))
	}

	failed, _ := store.CountByFilter(ctx, audit.QueryFilter{EventType: audit.EventLoginFailed})
	if failed != 1 {
		t.Errorf("failed logins: got %d, want 1", failed)
	}

	start := base.Add(90 * time.Second)
	recent, _ := store.CountByFilter(ctx, audit.QueryFilter{StartTime: &start})
	if recent != 2 {
		t.Errorf("events after start: got %d, want 2", recent)
	}

	page, _ := store.Query(ctx, audit.QueryFilter{Limit: 2, Offset: 2})
	if len(page) != 2 || page[0].EventType != audit.EventLoginFailed {
		t.Errorf("second page: %+v", page)
	}
}

func TestStore_DeleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: now.Add(-100 * 24 * time.Hour)})
	_ = store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventLogout, Timestamp: now})

	n, err := store.DeleteBefore(ctx, now.Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
	left, _ := store.CountByFilter(ctx, audit.QueryFilter{})
	if left != 1 {
		t.Errorf("remaining: got %d, want 1", left)
	}
}
