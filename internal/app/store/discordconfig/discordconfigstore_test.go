package discordconfigstore_test

import (
	"testing"
	"time"

	discordconfigstore "github.com/dalemusser/sagov/internal/app/store/discordconfig"
	"github.com/dalemusser/sagov/internal/domain/models"
	"github.com/dalemusser/sagov/internal/testutil"
)

func TestStore_Current_EmptyIsDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := discordconfigstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if cfg.Usable() {
		t.Error("absent configuration must not be usable")
	}
}

func TestStore_Save_LatestWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := discordconfigstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Save(ctx, models.DiscordConfig{Token: "first", Enabled: true}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.Save(ctx, models.DiscordConfig{Token: "second", Enabled: false, UpdatedByName: "admin"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cfg, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if cfg.Token != "second" || cfg.Enabled {
		t.Errorf("expected latest record, got %+v", cfg)
	}
	if cfg.UpdatedByName != "admin" {
		t.Errorf("UpdatedByName: got %q", cfg.UpdatedByName)
	}
}

func TestStore_Save_BlankTokenKeepsCurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := discordconfigstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Save(ctx, models.DiscordConfig{Token: "secret", Enabled: false}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	saved, err := store.Save(ctx, models.DiscordConfig{Enabled: true})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Token != "secret" || !saved.Usable() {
		t.Errorf("token not carried over: %+v", saved)
	}
}

func TestStore_Save_EnableWithoutToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := discordconfigstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Save(ctx, models.DiscordConfig{Enabled: true}); err == nil {
		t.Error("expected error enabling delivery without a token")
	}
}
