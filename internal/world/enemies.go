package world

import (
	"math"

	"blast-arena/server/internal/ai"
	"blast-arena/server/internal/grid"
)

// advanceEnemies runs the per-tick AI pass in spawn order. Moves commit
// immediately, so a later enemy sees the tiles earlier enemies already took
// this tick; ties for the same tile resolve to the first claimant.
func (r *Room) advanceEnemies() {
	kept := r.enemies[:0]
	for _, e := range r.enemies {
		if !e.Alive {
			e.corpseTicks--
			if e.corpseTicks > 0 {
				kept = append(kept, e)
			}
			continue
		}
		kept = append(kept, e)

		e.moveAccum++
		if e.moveAccum < enemyMoveInterval(e.Type) {
			continue
		}
		e.moveAccum = 0
		r.decideEnemyMove(e)
	}
	r.enemies = kept
}

func (r *Room) decideEnemyMove(e *enemyState) {
	strategy, ok := ai.Lookup(e.Type)
	if !ok {
		return
	}

	actor := &ai.Actor{
		ID:         e.ID,
		Type:       e.Type,
		X:          e.Pos.X,
		Y:          e.Pos.Y,
		SpawnX:     e.Spawn.X,
		SpawnY:     e.Spawn.Y,
		Blackboard: &e.Blackboard,
	}
	ctx := ai.Context{
		Tick:          r.tick,
		RNG:           r.rng,
		CanMove:       func(x, y int) bool { return r.canEnemyMoveTo(e, x, y) },
		NearestPlayer: func() (int, int, bool) { return r.nearestLivingPlayer(e.Pos) },
	}

	x, y, move := strategy.DecideMove(actor, ctx)
	if !move {
		return
	}
	// Re-validate before commit; the strategy may have consulted stale
	// assumptions or skipped the check entirely.
	if !r.canEnemyMoveTo(e, x, y) {
		return
	}
	e.Pos = grid.Point{X: x, Y: y}
}

// nearestLivingPlayer resolves the closest targetable player by Manhattan
// distance, breaking ties by join order.
func (r *Room) nearestLivingPlayer(from grid.Point) (int, int, bool) {
	bestDist := math.MaxInt
	var best grid.Point
	found := false
	for _, p := range r.players {
		if !p.Alive || p.ReachedExit {
			continue
		}
		d := grid.ManhattanDistance(from, p.Pos)
		if d < bestDist {
			bestDist = d
			best = p.Pos
			found = true
		}
	}
	if !found {
		return 0, 0, false
	}
	return best.X, best.Y, true
}
