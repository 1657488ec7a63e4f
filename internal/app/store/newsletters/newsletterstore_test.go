package newsletterstore_test

import (
	"errors"
	"testing"
	"time"

	newsletterstore "github.com/dalemusser/sagov/internal/app/store/newsletters"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_Draft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsletterstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.Create(ctx, models.Newsletter{
		Title:   " Bulletin n°1 ",
		Content: "<strong>Important</strong>",
		Status:  models.NewsletterSent, // ignored
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n.Status != models.NewsletterDraft {
		t.Errorf("Status: got %q, want draft", n.Status)
	}
	if n.Title != "Bulletin n°1" {
		t.Errorf("Title not trimmed: %q", n.Title)
	}
	if n.SentAt != nil {
		t.Error("SentAt must be empty for a draft")
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsletterstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	bad := []models.Newsletter{
		{Title: "", Content: "x"},
		{Title: "x", Content: " "},
		{Title: "x", Content: "y", Image: "not a url"},
	}
	for _, n := range bad {
		if _, err := store.Create(ctx, n); err == nil {
			t.Errorf("expected error for %+v", n)
		}
	}
}

func TestStore_MarkSent_OnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsletterstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, _ := store.Create(ctx, models.Newsletter{Title: "t", Content: "c"})
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.MarkSent(ctx, n.ID, at); err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	got, err := store.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.IsSent() || got.SentAt == nil || !got.SentAt.Equal(at) {
		t.Errorf("unexpected newsletter after MarkSent: %+v", got)
	}

	if err := store.MarkSent(ctx, n.ID, at.Add(time.Hour)); !errors.Is(err, newsletterstore.ErrNotDraft) {
		t.Errorf("second MarkSent: expected ErrNotDraft, got %v", err)
	}
	if err := store.MarkSent(ctx, primitive.NewObjectID(), at); err != mongo.ErrNoDocuments {
		t.Errorf("unknown id: expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Update_DraftOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsletterstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, _ := store.Create(ctx, models.Newsletter{Title: "t", Content: "c"})
	if err := store.Update(ctx, n.ID, models.Newsletter{Title: "t2", Content: "c2"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ := store.GetByID(ctx, n.ID)
	if got.Title != "t2" || got.Content != "c2" {
		t.Errorf("update not applied: %+v", got)
	}

	_ = store.MarkSent(ctx, n.ID, time.Now())
	if err := store.Update(ctx, n.ID, models.Newsletter{Title: "t3", Content: "c3"}); !errors.Is(err, newsletterstore.ErrNotDraft) {
		t.Errorf("update after send: expected ErrNotDraft, got %v", err)
	}
}

func TestStore_ListAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := newsletterstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, _ := store.Create(ctx, models.Newsletter{Title: "first", Content: "c"})
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Create(ctx, models.Newsletter{Title: "second", Content: "c"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_ = store.MarkSent(ctx, first.ID, time.Now())

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Title != "second" {
		t.Errorf("expected newest first, got %+v", list)
	}
	drafts, _ := store.CountByStatus(ctx, models.NewsletterDraft)
	if drafts != 1 {
		t.Errorf("drafts: got %d, want 1", drafts)
	}

	n, err := store.Delete(ctx, first.ID)
	if err != nil || n != 1 {
		t.Errorf("Delete: n=%d err=%v", n, err)
	}
}
