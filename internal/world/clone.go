package world

import (
	"fmt"

	"blast-arena/server/internal/grid"
)

// savedState is a deep copy of everything a tick may mutate. The grid's base
// layout is immutable, so only the destructibility overlay is captured.
type savedState struct {
	tick          uint64
	started       bool
	gameOver      bool
	levelComplete bool

	players []*playerState
	bombs   []*bombState
	enemies []*enemyState

	brokenWalls  int
	pendingDrain []grid.Point
}

func (r *Room) captureState() *savedState {
	s := &savedState{
		tick:          r.tick,
		started:       r.started,
		gameOver:      r.gameOver,
		levelComplete: r.levelComplete,
		players:       make([]*playerState, len(r.players)),
		bombs:         make([]*bombState, len(r.bombs)),
		enemies:       make([]*enemyState, len(r.enemies)),
		brokenWalls:   r.grid.BrokenCount(),
		pendingDrain:  r.grid.PendingDestroyed(),
	}
	for i, p := range r.players {
		cp := *p
		s.players[i] = &cp
	}
	for i, b := range r.bombs {
		cb := *b
		cb.BlastTiles = append([]grid.Point(nil), b.BlastTiles...)
		s.bombs[i] = &cb
	}
	for i, e := range r.enemies {
		ce := *e
		s.enemies[i] = &ce
	}
	return s
}

func (r *Room) restoreState(s *savedState) {
	r.tick = s.tick
	r.started = s.started
	r.gameOver = s.gameOver
	r.levelComplete = s.levelComplete
	r.players = s.players
	r.bombs = s.bombs
	r.enemies = s.enemies
	r.grid.RestoreOverlay(s.brokenWalls, s.pendingDrain)
}

// validate checks the room invariants after a tick has been applied. Any
// violation means the tick must not be published.
func (r *Room) validate() error {
	occupied := make(map[grid.Point]string)
	for _, p := range r.players {
		if p.Health < 0 || p.Health > PlayerMaxHealth {
			return fmt.Errorf("player %s health %d out of range", p.ID, p.Health)
		}
		if p.Alive != (p.Health > 0) {
			return fmt.Errorf("player %s alive flag disagrees with health %d", p.ID, p.Health)
		}
		if !p.Alive || p.ReachedExit {
			continue
		}
		if !r.grid.CanEnter(p.Pos.X, p.Pos.Y, grid.MoverWalker) {
			return fmt.Errorf("player %s inside wall at %v", p.ID, p.Pos)
		}
		if prev, taken := occupied[p.Pos]; taken {
			return fmt.Errorf("tile %v held by both %s and %s", p.Pos, prev, p.ID)
		}
		occupied[p.Pos] = p.ID
	}
	for _, e := range r.enemies {
		if e.Health < 0 || e.Health > e.MaxHealth {
			return fmt.Errorf("enemy %s health %d out of range", e.ID, e.Health)
		}
		if !e.Alive {
			continue
		}
		if !r.grid.CanEnter(e.Pos.X, e.Pos.Y, grid.MoverWalker) {
			return fmt.Errorf("enemy %s inside wall at %v", e.ID, e.Pos)
		}
		if prev, taken := occupied[e.Pos]; taken {
			return fmt.Errorf("tile %v held by both %s and %s", e.Pos, prev, e.ID)
		}
		occupied[e.Pos] = e.ID
	}
	for _, b := range r.bombs {
		if !b.Exploded && b.FuseTicks <= 0 {
			return fmt.Errorf("bomb at %v armed with expired fuse", b.Pos)
		}
	}
	return nil
}
