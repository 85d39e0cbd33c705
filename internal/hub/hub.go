package hub

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"blast-arena/server/internal/grid"
	"blast-arena/server/internal/persistence"
	"blast-arena/server/internal/sim"
	"blast-arena/server/internal/telemetry"
	"blast-arena/server/internal/world"
	"blast-arena/server/logging"
	lifecyclelog "blast-arena/server/logging/lifecycle"
)

// Config wires the hub's collaborators.
type Config struct {
	Levels    []grid.Definition
	Store     persistence.Storage
	Publisher logging.Publisher
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics

	TickRate        int
	CommandCapacity int
	PerActorLimit   int
}

// Hub owns every live room and its loop goroutine.
type Hub struct {
	cfg    Config
	nextID atomic.Uint64

	mu    sync.Mutex
	rooms map[string]*RoomSession
}

// New creates an empty hub.
func New(cfg Config) *Hub {
	if cfg.TickRate <= 0 {
		cfg.TickRate = world.TickRate
	}
	return &Hub{
		cfg:   cfg,
		rooms: make(map[string]*RoomSession),
	}
}

// CreateRoom builds a room for the given level and starts its tick loop.
// Stored custom levels take precedence over the configured set.
func (h *Hub) CreateRoom(levelID string) (*RoomSession, error) {
	def, ok := h.findLevel(levelID)
	if !ok {
		return nil, fmt.Errorf("level %s not found", levelID)
	}

	roomID := fmt.Sprintf("room-%d", h.nextID.Add(1))
	publisher := logging.WithRoom(h.cfg.Publisher, roomID)

	room, err := world.NewRoom(roomID, def, world.Config{Publisher: publisher})
	if err != nil {
		return nil, err
	}

	session := &RoomSession{
		id:          roomID,
		levelID:     def.ID,
		store:       h.cfg.Store,
		publisher:   publisher,
		logger:      h.cfg.Logger,
		stop:        make(chan struct{}),
		subscribers: make(map[string]*Subscriber),
	}
	session.loop = sim.NewLoop(room, sim.LoopConfig{
		TickRate:        h.cfg.TickRate,
		CommandCapacity: h.cfg.CommandCapacity,
		PerActorLimit:   h.cfg.PerActorLimit,
	}, sim.LoopHooks{AfterStep: session.afterStep}, h.cfg.Logger, h.cfg.Metrics)

	h.mu.Lock()
	h.rooms[roomID] = session
	h.mu.Unlock()

	go session.loop.Run(session.stop)
	lifecyclelog.RoomCreated(context.Background(), h.cfg.Publisher, roomID, def.ID)
	return session, nil
}

func (h *Hub) findLevel(levelID string) (grid.Definition, bool) {
	if h.cfg.Store != nil {
		if def, err := h.cfg.Store.LoadLevel(levelID); err == nil {
			return def, true
		}
	}
	return grid.FindDefinition(h.cfg.Levels, levelID)
}

// Room looks up a live room session.
func (h *Hub) Room(id string) (*RoomSession, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	session, ok := h.rooms[id]
	return session, ok
}

// RoomInfo summarizes one live room for listings and diagnostics.
type RoomInfo struct {
	ID            string `json:"id"`
	LevelID       string `json:"levelId"`
	Tick          uint64 `json:"tick"`
	Players       int    `json:"players"`
	Started       bool   `json:"started"`
	GameOver      bool   `json:"gameOver"`
	LevelComplete bool   `json:"levelComplete"`
	Subscribers   int    `json:"subscribers"`
}

// Rooms lists every live room.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.Lock()
	sessions := make([]*RoomSession, 0, len(h.rooms))
	for _, session := range h.rooms {
		sessions = append(sessions, session)
	}
	h.mu.Unlock()

	infos := make([]RoomInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, session.Info())
	}
	return infos
}

// DestroyRoom stops a room's loop and drops every subscriber.
func (h *Hub) DestroyRoom(id string) bool {
	h.mu.Lock()
	session, ok := h.rooms[id]
	if ok {
		delete(h.rooms, id)
	}
	h.mu.Unlock()
	if !ok {
		return false
	}

	tick := session.loop.Tick()
	session.close()
	lifecyclelog.RoomDestroyed(context.Background(), h.cfg.Publisher, id, tick)
	return true
}

// Levels returns the playable level definitions, stored customs included.
func (h *Hub) Levels() []grid.Definition {
	defs := append([]grid.Definition(nil), h.cfg.Levels...)
	if h.cfg.Store != nil {
		if stored, err := h.cfg.Store.LoadLevels(); err == nil {
			for _, def := range stored {
				if _, exists := grid.FindDefinition(defs, def.ID); !exists {
					defs = append(defs, def)
				}
			}
		}
	}
	return defs
}

// Close stops every room.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*RoomSession, 0, len(h.rooms))
	for id, session := range h.rooms {
		sessions = append(sessions, session)
		delete(h.rooms, id)
	}
	h.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}
}
