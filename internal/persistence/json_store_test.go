package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"blast-arena/server/internal/grid"
)

func newTestStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "store.json")
	store, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("new json store: %v", err)
	}
	return store, path
}

func sampleDefinition(id string) grid.Definition {
	return grid.Definition{
		ID:           id,
		Width:        11,
		Height:       9,
		PlayerStarts: []grid.Point{{X: 1, Y: 1}},
		ExitPosition: grid.Point{X: 9, Y: 7},
		HardWalls:    []grid.Point{{X: 5, Y: 5}},
	}
}

func sampleResult(room string, finished time.Time) *MatchResult {
	return &MatchResult{
		RoomID:  room,
		LevelID: "level_1",
		Outcome: "level_complete",
		Ticks:   900,
		Players: []MatchPlayer{
			{ID: "player-1", Name: "Ada", Survived: true, ReachedExit: true},
		},
		FinishedAt: finished,
	}
}

func TestJSONStoreCreatesFile(t *testing.T) {
	_, path := newTestStore(t)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("store file should exist after creation: %v", err)
	}
}

func TestMatchResultsNewestFirstWithLimit(t *testing.T) {
	store, _ := newTestStore(t)
	base := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	for i, room := range []string{"room-1", "room-2", "room-3"} {
		result := sampleResult(room, base.Add(time.Duration(i)*time.Minute))
		if err := store.SaveMatchResult(result); err != nil {
			t.Fatalf("save result %s: %v", room, err)
		}
	}

	results, err := store.LoadMatchResults(2)
	if err != nil {
		t.Fatalf("load results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].RoomID != "room-3" || results[1].RoomID != "room-2" {
		t.Fatalf("results should be newest first: %s, %s", results[0].RoomID, results[1].RoomID)
	}

	all, err := store.LoadMatchResults(0)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("limit 0 should return everything, got %d", len(all))
	}
}

func TestLevelRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	def := sampleDefinition("custom_1")
	if err := store.SaveLevel(def); err != nil {
		t.Fatalf("save level: %v", err)
	}

	loaded, err := store.LoadLevel("custom_1")
	if err != nil {
		t.Fatalf("load level: %v", err)
	}
	if loaded.Width != def.Width || loaded.ExitPosition != def.ExitPosition {
		t.Fatalf("loaded level differs: %+v", loaded)
	}

	defs, err := store.LoadLevels()
	if err != nil {
		t.Fatalf("load levels: %v", err)
	}
	if len(defs) != 1 || defs[0].ID != "custom_1" {
		t.Fatalf("levels = %+v", defs)
	}

	if _, err := store.LoadLevel("missing"); err == nil {
		t.Fatalf("unknown level should error")
	}
}

func TestSaveLevelRejectsInvalidDefinition(t *testing.T) {
	store, _ := newTestStore(t)
	def := sampleDefinition("bad")
	def.PlayerStarts = nil
	if err := store.SaveLevel(def); err == nil {
		t.Fatalf("definition without starts should be rejected")
	}
	if _, err := store.LoadLevel("bad"); err == nil {
		t.Fatalf("rejected level must not be stored")
	}
}

func TestStoreReloadsFromExistingFile(t *testing.T) {
	store, path := newTestStore(t)
	if err := store.SaveMatchResult(sampleResult("room-1", time.Now().UTC())); err != nil {
		t.Fatalf("save result: %v", err)
	}
	if err := store.SaveLevel(sampleDefinition("custom_1")); err != nil {
		t.Fatalf("save level: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewJSONStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	results, err := reopened.LoadMatchResults(0)
	if err != nil {
		t.Fatalf("load results: %v", err)
	}
	if len(results) != 1 || results[0].RoomID != "room-1" {
		t.Fatalf("results after reload = %+v", results)
	}
	if _, err := reopened.LoadLevel("custom_1"); err != nil {
		t.Fatalf("level should survive a reload: %v", err)
	}
}
