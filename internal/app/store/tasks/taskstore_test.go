package taskstore_test

import (
	"testing"

	taskstore "github.com/dalemusser/sagov/internal/app/store/tasks"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	other := primitive.NewObjectID()

	created, err := store.Create(ctx, models.Task{Title: "  Préparer le budget ", UserID: owner})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.TaskPending {
		t.Errorf("Status: got %q, want %q", created.Status, models.TaskPending)
	}
	if created.Title != "Préparer le budget" {
		t.Errorf("Title not trimmed: %q", created.Title)
	}
	if _, err := store.Create(ctx, models.Task{Title: "Autre", UserID: other}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := store.ListForUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("expected only the owner's task, got %+v", list)
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Task{Title: " ", UserID: primitive.NewObjectID()}); err == nil {
		t.Error("expected error for blank title")
	}
	if _, err := store.Create(ctx, models.Task{Title: "x"}); err == nil {
		t.Error("expected error for missing owner")
	}
}

func TestStore_Toggle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	task, _ := store.Create(ctx, models.Task{Title: "Signer", UserID: owner})

	toggled, err := store.Toggle(ctx, task.ID, owner)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if toggled.Status != models.TaskCompleted {
		t.Errorf("after first toggle: got %q", toggled.Status)
	}
	n, _ := store.CountPending(ctx, owner)
	if n != 0 {
		t.Errorf("CountPending: got %d, want 0", n)
	}

	toggled, err = store.Toggle(ctx, task.ID, owner)
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if toggled.Status != models.TaskPending {
		t.Errorf("after second toggle: got %q", toggled.Status)
	}

	if _, err := store.Toggle(ctx, task.ID, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("toggle by another user: expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Delete_ScopedToOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := taskstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	task, _ := store.Create(ctx, models.Task{Title: "Classer", UserID: owner})

	n, err := store.Delete(ctx, task.ID, primitive.NewObjectID())
	if err != nil || n != 0 {
		t.Fatalf("delete by stranger: n=%d err=%v", n, err)
	}
	n, err = store.Delete(ctx, task.ID, owner)
	if err != nil || n != 1 {
		t.Fatalf("delete by owner: n=%d err=%v", n, err)
	}
}
