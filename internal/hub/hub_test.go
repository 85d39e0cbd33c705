package hub

import (
	"path/filepath"
	"testing"
	"time"

	"blast-arena/server/internal/grid"
	"blast-arena/server/internal/persistence"
	"blast-arena/server/internal/sim"
	"blast-arena/server/logging"
)

func testHub(t *testing.T, store persistence.Storage) *Hub {
	t.Helper()
	h := New(Config{
		Levels:          grid.BuiltinDefinitions(),
		Store:           store,
		Publisher:       logging.NopPublisher(),
		TickRate:        120,
		CommandCapacity: 64,
		PerActorLimit:   8,
	})
	t.Cleanup(h.Close)
	return h
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCreateRoomUnknownLevel(t *testing.T) {
	h := testHub(t, nil)
	if _, err := h.CreateRoom("level_99"); err == nil {
		t.Fatalf("unknown level should fail")
	}
}

func TestRoomLifecycle(t *testing.T) {
	h := testHub(t, nil)
	session, err := h.CreateRoom("level_1")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if session.ID() != "room-1" || session.LevelID() != "level_1" {
		t.Fatalf("session = %s/%s", session.ID(), session.LevelID())
	}

	if _, ok := h.Room("room-1"); !ok {
		t.Fatalf("room should be registered")
	}
	infos := h.Rooms()
	if len(infos) != 1 || infos[0].ID != "room-1" || infos[0].Started {
		t.Fatalf("rooms = %+v", infos)
	}

	if !h.DestroyRoom("room-1") {
		t.Fatalf("destroy should succeed")
	}
	if h.DestroyRoom("room-1") {
		t.Fatalf("second destroy should report missing")
	}
	if got := len(h.Rooms()); got != 0 {
		t.Fatalf("rooms after destroy = %d", got)
	}
}

func TestStoredLevelsAreListedAndPlayable(t *testing.T) {
	store, err := persistence.NewJSONStore(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	custom := grid.Definition{
		ID:           "custom_1",
		Width:        11,
		Height:       9,
		PlayerStarts: []grid.Point{{X: 1, Y: 1}},
		ExitPosition: grid.Point{X: 9, Y: 7},
		HardWalls:    []grid.Point{{X: 5, Y: 5}},
	}
	if err := store.SaveLevel(custom); err != nil {
		t.Fatalf("save level: %v", err)
	}

	h := testHub(t, store)
	if _, ok := grid.FindDefinition(h.Levels(), "custom_1"); !ok {
		t.Fatalf("stored level missing from listing: %+v", h.Levels())
	}
	session, err := h.CreateRoom("custom_1")
	if err != nil {
		t.Fatalf("create room for stored level: %v", err)
	}
	if session.LevelID() != "custom_1" {
		t.Fatalf("session level = %s", session.LevelID())
	}
}

func TestEnqueuedJoinReachesSnapshot(t *testing.T) {
	h := testHub(t, nil)
	session, err := h.CreateRoom("level_1")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	if ok, reason := session.Enqueue(sim.Command{
		ActorID: "player-1",
		Type:    sim.CommandJoin,
		Join:    &sim.JoinCommand{Name: "Ada"},
	}); !ok {
		t.Fatalf("enqueue join rejected: %s", reason)
	}

	waitFor(t, "join to appear in a snapshot", func() bool {
		snap := session.Latest()
		return len(snap.Players) == 1 && snap.Players[0].ID == "player-1"
	})
	if info := session.Info(); info.Players != 1 {
		t.Fatalf("info players = %d", info.Players)
	}
}
