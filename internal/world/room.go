package world

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"blast-arena/server/internal/ai"
	"blast-arena/server/internal/grid"
	"blast-arena/server/internal/sim"
	"blast-arena/server/logging"
	lifecyclelog "blast-arena/server/logging/lifecycle"
	simlog "blast-arena/server/logging/simulation"
)

// Config bundles room construction options.
type Config struct {
	// Publisher receives gameplay events. Nil disables event publication.
	Publisher logging.Publisher
	// Seed drives enemy movement randomness. Zero means seed from the clock.
	Seed int64
	// MaxPlayers overrides the room capacity. Zero means MaxRoomPlayers.
	MaxPlayers int
}

// playerState is the authoritative per-player record. The snapshot types in
// package sim are projections of this.
type playerState struct {
	ID           string
	Name         string
	Pos          grid.Point
	Health       int
	Alive        bool
	Ready        bool
	ReachedExit  bool
	BombCapacity int
	BombPower    int
	Speed        int
	contact      contactState
}

type bombState struct {
	Owner       string
	Pos         grid.Point
	FuseTicks   int
	Exploded    bool
	LingerTicks int
	BlastTiles  []grid.Point
}

type enemyState struct {
	ID         string
	Type       ai.Type
	Pos        grid.Point
	Spawn      grid.Point
	Health     int
	MaxHealth  int
	Alive      bool
	Blackboard ai.Blackboard

	// Ticks accumulated toward the next movement decision.
	moveAccum int
	// Ticks remaining before a corpse is removed.
	corpseTicks int
}

// Room owns the authoritative state of one match and implements sim.Engine.
// All methods must be called from a single goroutine; the loop in package sim
// is that goroutine in production.
type Room struct {
	id  string
	def grid.Definition

	grid    *grid.Grid
	players []*playerState // join order
	bombs   []*bombState   // placement order
	enemies []*enemyState  // spawn order

	tick          uint64
	started       bool
	gameOver      bool
	levelComplete bool

	maxSeats  int
	rng       *rand.Rand
	publisher logging.Publisher

	// Pre-tick state captured by Apply, consumed by Step for rollback.
	pending *savedState

	snapshot sim.Snapshot
}

// NewRoom builds the level grid and spawns the definition's enemies.
func NewRoom(id string, def grid.Definition, cfg Config) (*Room, error) {
	g, err := def.Build()
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &Room{
		id:        id,
		def:       def,
		grid:      g,
		maxSeats:  cfg.MaxPlayers,
		rng:       rand.New(rand.NewSource(seed)),
		publisher: cfg.Publisher,
	}
	if err := r.spawnEnemies(); err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	r.rebuildSnapshot()
	return r, nil
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// LevelID returns the identifier of the level backing this room.
func (r *Room) LevelID() string { return r.def.ID }

// Started reports whether the match has begun.
func (r *Room) Started() bool { return r.started }

// Finished reports whether the match reached a terminal state.
func (r *Room) Finished() bool { return r.gameOver || r.levelComplete }

// PlayerCount returns the number of seated players, dead ones included.
func (r *Room) PlayerCount() int { return len(r.players) }

func (r *Room) maxPlayers() int {
	if r.maxSeats > 0 {
		return r.maxSeats
	}
	return MaxRoomPlayers
}

func (r *Room) spawnEnemies() error {
	idx := 0
	for _, spawn := range r.def.EnemySpawns {
		typ, ok := ai.ParseType(spawn.Type)
		if !ok {
			return fmt.Errorf("unknown enemy type %q", spawn.Type)
		}
		for _, pos := range spawn.Positions {
			if !r.grid.CanEnter(pos.X, pos.Y, grid.MoverWalker) {
				return fmt.Errorf("enemy spawn %v blocked", pos)
			}
			e := &enemyState{
				ID:        fmt.Sprintf("enemy-%d", idx+1),
				Type:      typ,
				Pos:       pos,
				Spawn:     pos,
				MaxHealth: enemyMaxHealth(typ),
				Alive:     true,
			}
			e.Health = e.MaxHealth
			if typ == ai.TypeChasing {
				e.Blackboard.Horizontal = r.rng.Intn(2) == 0
				e.Blackboard.Direction = 1
			}
			r.enemies = append(r.enemies, e)
			idx++
		}
	}
	return nil
}

func enemyMaxHealth(t ai.Type) int {
	switch t {
	case ai.TypeChasing:
		return chasingMaxHealth
	case ai.TypeSmart:
		return smartMaxHealth
	default:
		return staticMaxHealth
	}
}

func enemyMoveInterval(t ai.Type) int {
	switch t {
	case ai.TypeChasing:
		return chasingMoveIntervalTicks
	case ai.TypeSmart:
		return smartMoveIntervalTicks
	default:
		return staticMoveIntervalTicks
	}
}

// Apply drains one tick's worth of queued commands into the room in arrival
// order. It captures the pre-tick state first so Step can roll the whole tick
// back, intents included, if validation fails.
func (r *Room) Apply(cmds []sim.Command) {
	if r.pending == nil {
		r.pending = r.captureState()
	}
	for i := range cmds {
		r.applyCommand(&cmds[i])
	}
}

func (r *Room) applyCommand(cmd *sim.Command) {
	switch cmd.Type {
	case sim.CommandJoin:
		r.applyJoin(cmd)
	case sim.CommandMove:
		r.applyMove(cmd)
	case sim.CommandPlaceBomb:
		r.applyPlaceBomb(cmd)
	case sim.CommandReady:
		r.applyReady(cmd)
	case sim.CommandLeave:
		r.applyLeave(cmd)
	default:
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonUnknownIntent)
	}
}

func (r *Room) applyJoin(cmd *sim.Command) {
	if r.started {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonMatchStarted)
		return
	}
	if len(r.players) >= r.maxPlayers() {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonRoomFull)
		return
	}
	if r.findPlayer(cmd.ActorID) != nil {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonDuplicateActor)
		return
	}

	start, ok := r.freePlayerStart()
	if !ok {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonRoomFull)
		return
	}
	name := cmd.ActorID
	if cmd.Join != nil && cmd.Join.Name != "" {
		name = cmd.Join.Name
	}
	r.players = append(r.players, &playerState{
		ID:           cmd.ActorID,
		Name:         name,
		Pos:          start,
		Health:       PlayerMaxHealth,
		Alive:        true,
		BombCapacity: DefaultBombCapacity,
		BombPower:    DefaultBombPower,
		Speed:        DefaultSpeed,
	})
	lifecyclelog.PlayerJoined(context.Background(), r.publisher, r.tick, cmd.ActorID)
}

func (r *Room) applyMove(cmd *sim.Command) {
	p := r.findPlayer(cmd.ActorID)
	if p == nil {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonUnknownActor)
		return
	}
	if !r.started || !p.Alive || p.ReachedExit {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonActorInactive)
		return
	}
	if cmd.Move == nil {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonMalformedIntent)
		return
	}
	dx, dy := cmd.Move.Direction.Delta()
	if dx == 0 && dy == 0 {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonMalformedIntent)
		return
	}

	nx, ny := p.Pos.X+dx, p.Pos.Y+dy
	ok, reason := r.canPlayerMoveTo(p, nx, ny)
	if !ok {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reason)
		return
	}
	p.Pos = grid.Point{X: nx, Y: ny}
	if r.grid.TileAt(nx, ny) == grid.TileExit {
		p.ReachedExit = true
		lifecyclelog.PlayerExited(context.Background(), r.publisher, r.tick, p.ID)
	}
}

func (r *Room) applyPlaceBomb(cmd *sim.Command) {
	p := r.findPlayer(cmd.ActorID)
	if p == nil {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonUnknownActor)
		return
	}
	if !r.started || !p.Alive || p.ReachedExit {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonActorInactive)
		return
	}
	if ok, reason := r.placeBomb(p); !ok {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reason)
	}
}

func (r *Room) applyReady(cmd *sim.Command) {
	p := r.findPlayer(cmd.ActorID)
	if p == nil {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonUnknownActor)
		return
	}
	if r.started {
		r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonMatchStarted)
		return
	}
	p.Ready = true
	if r.allReady() {
		r.started = true
		lifecyclelog.RoomStarted(context.Background(), r.publisher, r.id, r.tick)
	}
}

func (r *Room) applyLeave(cmd *sim.Command) {
	for i, p := range r.players {
		if p.ID != cmd.ActorID {
			continue
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		lifecyclelog.PlayerLeft(context.Background(), r.publisher, r.tick, cmd.ActorID)
		// A pre-match leave may satisfy the remaining players' readiness.
		if !r.started && r.allReady() {
			r.started = true
			lifecyclelog.RoomStarted(context.Background(), r.publisher, r.id, r.tick)
		}
		return
	}
	r.rejectIntent(cmd.ActorID, string(cmd.Type), reasonUnknownActor)
}

// freePlayerStart returns the first start tile no seated player occupies.
func (r *Room) freePlayerStart() (grid.Point, bool) {
	for _, start := range r.def.PlayerStarts {
		taken := false
		for _, p := range r.players {
			if p.Pos == start {
				taken = true
				break
			}
		}
		if !taken {
			return start, true
		}
	}
	return grid.Point{}, false
}

func (r *Room) allReady() bool {
	if len(r.players) == 0 {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

func (r *Room) findPlayer(id string) *playerState {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) rejectIntent(actorID, intent, reason string) {
	simlog.IntentRejected(context.Background(), r.publisher, r.tick, actorID, intent, reason)
}

// Step advances the room by one tick: bombs, enemies, contact damage, then
// invariant validation. A validation failure restores the pre-tick state and
// returns an error; the previously built snapshot stays current.
func (r *Room) Step(delta float64) error {
	saved := r.pending
	if saved == nil {
		saved = r.captureState()
	}
	r.pending = nil

	r.tick++

	if r.started && !r.gameOver && !r.levelComplete {
		r.advanceBombs()
		r.advanceEnemies()
		r.applyContactDamage(delta)
		r.updateOutcome()
	}

	if err := r.validate(); err != nil {
		tick := r.tick
		r.restoreState(saved)
		simlog.TickCorruption(context.Background(), r.publisher, tick, err.Error())
		return fmt.Errorf("tick %d corrupted: %w", tick, err)
	}

	r.rebuildSnapshot()
	return nil
}

// Snapshot returns the view built by the last committed tick.
func (r *Room) Snapshot() sim.Snapshot {
	return r.snapshot
}

func (r *Room) updateOutcome() {
	alive, exited := 0, 0
	for _, p := range r.players {
		if p.Alive {
			alive++
			if p.ReachedExit {
				exited++
			}
		}
	}
	if len(r.players) > 0 && alive == 0 {
		r.gameOver = true
		return
	}
	if alive > 0 && exited == alive {
		r.levelComplete = true
	}
}

func (r *Room) rebuildSnapshot() {
	snap := sim.Snapshot{
		RoomID:         r.id,
		Tick:           r.tick,
		Started:        r.started,
		GameOver:       r.gameOver,
		LevelComplete:  r.levelComplete,
		Players:        make([]sim.Player, 0, len(r.players)),
		DestroyedWalls: r.grid.DrainDestroyed(),
	}
	for _, p := range r.players {
		snap.Players = append(snap.Players, sim.Player{
			ID:           p.ID,
			Name:         p.Name,
			Pos:          p.Pos,
			Health:       p.Health,
			Alive:        p.Alive,
			Ready:        p.Ready,
			ReachedExit:  p.ReachedExit,
			BombCapacity: p.BombCapacity,
			BombPower:    p.BombPower,
			Speed:        p.Speed,
		})
	}
	for _, b := range r.bombs {
		snap.Bombs = append(snap.Bombs, sim.Bomb{
			Owner:      b.Owner,
			Pos:        b.Pos,
			FuseTicks:  b.FuseTicks,
			Exploded:   b.Exploded,
			BlastTiles: append([]grid.Point(nil), b.BlastTiles...),
		})
	}
	for _, e := range r.enemies {
		snap.Enemies = append(snap.Enemies, sim.Enemy{
			ID:     e.ID,
			Type:   string(e.Type),
			Pos:    e.Pos,
			Health: e.Health,
			Alive:  e.Alive,
		})
	}
	r.snapshot = snap
}
