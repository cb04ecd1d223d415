package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), t.TempDir(), logger)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func testWorld() *world.World {
	return &world.World{
		Meta: world.Meta{ID: "test_world", Name: "Test World"},
		Companions: map[string]world.Companion{
			"Luna": {
				Wardrobe:      map[string]string{"default": "white dress"},
				DefaultOutfit: "default",
			},
		},
	}
}

func TestRedisStorage_SaveAndLoadSession(t *testing.T) {
	store, _ := setupTestStorage(t)
	ctx := context.Background()

	s := session.New(testWorld(), "Luna")
	s.Game.Gold = 25
	s.KnowledgeBase = append(s.KnowledgeBase, "Luna fears thunderstorms.")

	if err := store.SaveSession(ctx, "slot1", s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := store.LoadSession(ctx, "slot1")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected session, got nil")
	}
	if loaded.ID != s.ID {
		t.Errorf("Expected ID %v, got %v", s.ID, loaded.ID)
	}
	if loaded.Game.Gold != 25 {
		t.Errorf("Expected gold 25, got %d", loaded.Game.Gold)
	}
	if len(loaded.KnowledgeBase) != 1 {
		t.Errorf("Expected knowledge base persisted, got %v", loaded.KnowledgeBase)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Error("Expected updated_at to be stamped on save")
	}
}

func TestRedisStorage_LoadEmptySlot(t *testing.T) {
	store, _ := setupTestStorage(t)

	loaded, err := store.LoadSession(context.Background(), "empty")
	if err != nil {
		t.Fatalf("Expected no error for empty slot, got %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil session for empty slot")
	}
}

func TestRedisStorage_OldSchemaDefaulted(t *testing.T) {
	store, mr := setupTestStorage(t)

	// A save written before npc_states, summary_log and knowledge_base
	// existed.
	old := `{"id":"00000000-0000-0000-0000-000000000001","meta":{"world_id":"test_world","turn_count":3},"game":{"location":"Tavern","companion_name":"Luna","current_outfit":"default","gold":5,"hp":10}}`
	mr.Set("session:legacy", old)

	loaded, err := store.LoadSession(context.Background(), "legacy")
	if err != nil {
		t.Fatalf("Failed to load legacy session: %v", err)
	}
	if loaded.Game.NPCStates == nil || loaded.SummaryLog == nil || loaded.KnowledgeBase == nil {
		t.Error("Expected missing fields defaulted on load")
	}
	if loaded.Game.TimeOfDay == "" {
		t.Error("Expected time of day defaulted on load")
	}
	if loaded.Game.Location != "Tavern" || loaded.Meta.TurnCount != 3 {
		t.Error("Expected carried fields to survive")
	}
}

func TestRedisStorage_DeleteAndList(t *testing.T) {
	store, _ := setupTestStorage(t)
	ctx := context.Background()

	w := testWorld()
	if err := store.SaveSession(ctx, "beta", session.New(w, "Luna")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveSession(ctx, "alpha", session.New(w, "Luna")); err != nil {
		t.Fatalf("save: %v", err)
	}

	slots, err := store.ListSaves(ctx)
	if err != nil {
		t.Fatalf("Failed to list saves: %v", err)
	}
	if len(slots) != 2 || slots[0] != "alpha" || slots[1] != "beta" {
		t.Errorf("Expected sorted slots [alpha beta], got %v", slots)
	}

	if err := store.DeleteSession(ctx, "alpha"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	slots, _ = store.ListSaves(ctx)
	if len(slots) != 1 || slots[0] != "beta" {
		t.Errorf("Expected [beta] after delete, got %v", slots)
	}
}

func TestRedisStorage_EmptySlotName(t *testing.T) {
	store, _ := setupTestStorage(t)

	if err := store.SaveSession(context.Background(), "", session.New(testWorld(), "Luna")); err == nil {
		t.Error("Expected error for empty slot name")
	}
}

func TestRedisStorage_Worlds(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	dir := t.TempDir()
	cartridge := `meta:
  id: neon_city
  name: Neon City
  genre: cyberpunk
  world_lore: A rain-soaked megacity.
companions:
  Luna:
    base_prompt: 1girl, silver hair
    default_outfit: default
    wardrobe:
      default: white dress
npc_logic:
  male_hints: [guard]
  female_hints: [waitress]
`
	if err := os.WriteFile(filepath.Join(dir, "neon_city.yaml"), []byte(cartridge), 0o644); err != nil {
		t.Fatalf("Failed to write cartridge: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatalf("Failed to write extra file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), dir, logger)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	ids, err := store.ListWorlds(ctx)
	if err != nil {
		t.Fatalf("Failed to list worlds: %v", err)
	}
	if len(ids) != 1 || ids[0] != "neon_city" {
		t.Errorf("Expected [neon_city], got %v", ids)
	}

	w, err := store.GetWorld(ctx, "neon_city")
	if err != nil {
		t.Fatalf("Failed to get world: %v", err)
	}
	if w.Meta.Name != "Neon City" {
		t.Errorf("Expected world name parsed, got %q", w.Meta.Name)
	}
	if !w.HasCompanion("Luna") {
		t.Error("Expected Luna in roster")
	}

	if _, err := store.GetWorld(ctx, "missing"); err == nil {
		t.Error("Expected error for missing world")
	}
	if _, err := store.GetWorld(ctx, "../escape"); err == nil {
		t.Error("Expected error for path traversal id")
	}
}
