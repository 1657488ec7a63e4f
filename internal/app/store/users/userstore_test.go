package userstore_test

import (
	"errors"
	"strings"
	"testing"

	userstore "github.com/dalemusser/sagov/internal/app/store/users"
	"github.com/dalemusser/sagov/internal/app/system/indexes"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/sagov/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	userstore.BcryptCost = bcrypt.MinCost
}

func TestStore_Create_Admin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Username: "  Admin ", Password: "admin123", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if u.Username != "Admin" {
		t.Errorf("Username: got %q, want %q", u.Username, "Admin")
	}
	if u.UsernameCI != "admin" {
		t.Errorf("UsernameCI: got %q, want %q", u.UsernameCI, "admin")
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if u.Password == "admin123" || !strings.HasPrefix(u.Password, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", u.Password)
	}
}

func TestStore_Create_DefaultRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Username: "agent", Password: "pw"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Role != models.RoleUser {
		t.Errorf("Role: got %q, want %q", u.Role, models.RoleUser)
	}
}

func TestStore_Create_Invalid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []models.User{
		{Username: "", Password: "pw"},
		{Username: "x", Password: ""},
		{Username: "x", Password: "pw", Role: "superadmin"},
	}
	for _, c := range cases {
		if _, err := store.Create(ctx, c); err == nil {
			t.Errorf("expected error for %+v", c)
		}
	}
}

func TestStore_Create_DuplicateUsername(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{Username: "Marie", Password: "a"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Username: "marie", Password: "b"})
	if !errors.Is(err, userstore.ErrDuplicateUsername) {
		t.Errorf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestStore_Authenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Username: "user", Password: "user123"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	u, err := store.Authenticate(ctx, "USER", "user123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("authenticated the wrong user")
	}

	if _, err := store.Authenticate(ctx, "user", "wrong"); !errors.Is(err, userstore.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.Authenticate(ctx, "nobody", "user123"); !errors.Is(err, userstore.ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_ListDeleteCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, models.User{Username: "bravo", Password: "x", Role: models.RoleAdmin})
	if _, err := store.Create(ctx, models.User{Username: "alpha", Password: "x"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Username != "alpha" {
		t.Fatalf("expected [alpha bravo], got %+v", list)
	}

	admins, _ := store.CountAdmins(ctx)
	if admins != 1 {
		t.Errorf("CountAdmins: got %d, want 1", admins)
	}

	n, err := store.Delete(ctx, b.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
	count, _ := store.Count(ctx)
	if count != 1 {
		t.Errorf("Count: got %d, want 1", count)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Username: "chef", Password: "x", Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	f := userstore.NewFetcher(db)
	su := f.FetchUser(ctx, u.ID.Hex())
	if su == nil || su.Name != "chef" || su.Role != models.RoleAdmin {
		t.Fatalf("unexpected session user: %+v", su)
	}
	if f.FetchUser(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("expected nil for unknown user")
	}
	if f.FetchUser(ctx, "garbage") != nil {
		t.Error("expected nil for malformed id")
	}
}
