package world

import "blast-arena/server/internal/grid"

// Reason codes attached to rejected intents. They are stable strings so
// operators can aggregate them in log queries.
const (
	reasonUnknownIntent   = "unknown_intent"
	reasonMalformedIntent = "malformed_intent"
	reasonUnknownActor    = "unknown_actor"
	reasonActorInactive   = "actor_inactive"
	reasonMatchStarted    = "match_started"
	reasonRoomFull        = "room_full"
	reasonDuplicateActor  = "duplicate_actor"

	reasonTileBlocked   = "tile_blocked"
	reasonPlayerBlocked = "player_blocked"
	reasonEnemyBlocked  = "enemy_blocked"
	reasonBombBlocked   = "bomb_blocked"
	reasonBombLimit     = "bomb_limit"
	reasonBombOccupied  = "bomb_occupied"
)

// canPlayerMoveTo is the collision check for player movement. Players who
// reached the exit have left the collision domain and do not block anyone.
func (r *Room) canPlayerMoveTo(p *playerState, x, y int) (bool, string) {
	if !r.grid.CanEnter(x, y, grid.MoverWalker) {
		return false, reasonTileBlocked
	}
	for _, other := range r.players {
		if other == p || !other.Alive || other.ReachedExit {
			continue
		}
		if other.Pos.X == x && other.Pos.Y == y {
			return false, reasonPlayerBlocked
		}
	}
	for _, e := range r.enemies {
		if e.Alive && e.Pos.X == x && e.Pos.Y == y {
			return false, reasonEnemyBlocked
		}
	}
	for _, b := range r.bombs {
		if !b.Exploded && b.Pos.X == x && b.Pos.Y == y {
			return false, reasonBombBlocked
		}
	}
	return true, ""
}

// canEnemyMoveTo is the collision check for enemy movement. Enemies never
// step onto the exit tile, onto armed bombs, or onto any living entity.
func (r *Room) canEnemyMoveTo(e *enemyState, x, y int) bool {
	if !r.grid.CanEnter(x, y, grid.MoverWalker) {
		return false
	}
	if r.grid.TileAt(x, y) == grid.TileExit {
		return false
	}
	for _, p := range r.players {
		if p.Alive && !p.ReachedExit && p.Pos.X == x && p.Pos.Y == y {
			return false
		}
	}
	for _, other := range r.enemies {
		if other == e || !other.Alive {
			continue
		}
		if other.Pos.X == x && other.Pos.Y == y {
			return false
		}
	}
	for _, b := range r.bombs {
		if !b.Exploded && b.Pos.X == x && b.Pos.Y == y {
			return false
		}
	}
	return true
}
