package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"blast-arena/server/internal/persistence"
	"blast-arena/server/internal/sim"
	"blast-arena/server/internal/telemetry"
	"blast-arena/server/logging"
	simlog "blast-arena/server/logging/simulation"
)

const writeWait = 10 * time.Second

// RoomSession pairs one room's loop with its WebSocket subscribers. Commands
// enter through Enqueue and the loop goroutine is the only state writer;
// session methods never touch room internals directly.
type RoomSession struct {
	id      string
	levelID string
	loop    *sim.Loop

	store     persistence.Storage
	publisher logging.Publisher
	logger    telemetry.Logger

	stop     chan struct{}
	stopOnce sync.Once

	mu          sync.Mutex
	subscribers map[string]*Subscriber
	resultSaved bool
}

type Subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes one frame under the subscriber's write lock. The room loop and
// the connection's read goroutine both write through here.
func (sub *Subscriber) Send(data []byte) error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sub.conn.WriteMessage(websocket.TextMessage, data)
}

// stateMessage frames a snapshot for subscribers.
type stateMessage struct {
	Type       string       `json:"type"`
	Snapshot   sim.Snapshot `json:"snapshot"`
	ServerTime int64        `json:"serverTime"`
}

// ID returns the room identifier.
func (s *RoomSession) ID() string { return s.id }

// LevelID returns the backing level.
func (s *RoomSession) LevelID() string { return s.levelID }

// Enqueue stages a command for the next tick.
func (s *RoomSession) Enqueue(cmd sim.Command) (bool, string) {
	cmd.OriginTick = s.loop.Tick()
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = time.Now()
	}
	return s.loop.Enqueue(cmd)
}

// Latest returns the last committed snapshot.
func (s *RoomSession) Latest() sim.Snapshot {
	return s.loop.Latest()
}

// Info summarizes the session from its published snapshot.
func (s *RoomSession) Info() RoomInfo {
	snap := s.loop.Latest()
	s.mu.Lock()
	subs := len(s.subscribers)
	s.mu.Unlock()
	return RoomInfo{
		ID:            s.id,
		LevelID:       s.levelID,
		Tick:          snap.Tick,
		Players:       len(snap.Players),
		Started:       snap.Started,
		GameOver:      snap.GameOver,
		LevelComplete: snap.LevelComplete,
		Subscribers:   subs,
	}
}

// Subscribe attaches a connection under an actor id, replacing any previous
// connection for the same actor.
func (s *RoomSession) Subscribe(actorID string, conn *websocket.Conn) *Subscriber {
	sub := &Subscriber{conn: conn}
	s.mu.Lock()
	if existing, ok := s.subscribers[actorID]; ok {
		existing.conn.Close()
	}
	s.subscribers[actorID] = sub
	s.mu.Unlock()
	return sub
}

// Disconnect drops the subscriber and stages a Leave so the loop removes the
// player on its own schedule.
func (s *RoomSession) Disconnect(actorID string) {
	s.mu.Lock()
	sub, ok := s.subscribers[actorID]
	if ok {
		delete(s.subscribers, actorID)
	}
	s.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
	s.Enqueue(sim.Command{ActorID: actorID, Type: sim.CommandLeave})
}

// afterStep runs on the loop goroutine after every tick attempt.
func (s *RoomSession) afterStep(result sim.StepResult) {
	if result.Duration > result.Budget && result.Budget > 0 {
		simlog.TickBudgetOverrun(context.Background(), s.publisher, result.Tick, simlog.TickBudgetOverrunPayload{
			DurationMillis: result.Duration.Milliseconds(),
			BudgetMillis:   result.Budget.Milliseconds(),
			Ratio:          float64(result.Duration) / float64(result.Budget),
		})
	}
	if result.Err != nil {
		// The previous snapshot is still current; subscribers keep it.
		return
	}
	s.broadcast(result.Snapshot)
	if result.Snapshot.GameOver || result.Snapshot.LevelComplete {
		s.recordResult(result.Snapshot)
	}
}

// broadcast fans the snapshot out to every subscriber. A failed write drops
// that subscriber and stages its Leave.
func (s *RoomSession) broadcast(snap sim.Snapshot) {
	data, err := json.Marshal(stateMessage{
		Type:       "state",
		Snapshot:   snap,
		ServerTime: time.Now().UnixMilli(),
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("room %s: marshal state: %v", s.id, err)
		}
		return
	}

	s.mu.Lock()
	subs := make(map[string]*Subscriber, len(s.subscribers))
	for id, sub := range s.subscribers {
		subs[id] = sub
	}
	s.mu.Unlock()

	for id, sub := range subs {
		if err := sub.Send(data); err != nil {
			if s.logger != nil {
				s.logger.Printf("room %s: send to %s: %v", s.id, id, err)
			}
			s.Disconnect(id)
		}
	}
}

// recordResult persists the final standings exactly once per match.
func (s *RoomSession) recordResult(snap sim.Snapshot) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	if s.resultSaved {
		s.mu.Unlock()
		return
	}
	s.resultSaved = true
	s.mu.Unlock()

	outcome := "game_over"
	if snap.LevelComplete {
		outcome = "level_complete"
	}
	result := &persistence.MatchResult{
		RoomID:     s.id,
		LevelID:    s.levelID,
		Outcome:    outcome,
		Ticks:      snap.Tick,
		FinishedAt: time.Now(),
	}
	for _, p := range snap.Players {
		result.Players = append(result.Players, persistence.MatchPlayer{
			ID:          p.ID,
			Name:        p.Name,
			Survived:    p.Alive,
			ReachedExit: p.ReachedExit,
		})
	}
	if err := s.store.SaveMatchResult(result); err != nil && s.logger != nil {
		s.logger.Printf("room %s: save match result: %v", s.id, err)
	}
}

func (s *RoomSession) close() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	subs := make([]*Subscriber, 0, len(s.subscribers))
	for id, sub := range s.subscribers {
		subs = append(subs, sub)
		delete(s.subscribers, id)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.conn.Close()
	}
}
