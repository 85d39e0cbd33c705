package ai

// StaticStrategy keeps an enemy within Manhattan distance 1 of its spawn
// tile, picking a random valid neighbor each decision. When displaced with
// no valid candidate it drifts back to the spawn tile.
type StaticStrategy struct{}

var staticDirections = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

func (StaticStrategy) DecideMove(actor *Actor, ctx Context) (int, int, bool) {
	order := [4]int{0, 1, 2, 3}
	if ctx.RNG != nil {
		ctx.RNG.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	for _, idx := range order {
		d := staticDirections[idx]
		nx, ny := actor.X+d[0], actor.Y+d[1]
		if abs(nx-actor.SpawnX)+abs(ny-actor.SpawnY) > 1 {
			continue
		}
		if ctx.CanMove != nil && ctx.CanMove(nx, ny) {
			return nx, ny, true
		}
	}

	// No neighbor is valid; fall back toward spawn when displaced.
	if actor.X != actor.SpawnX || actor.Y != actor.SpawnY {
		if ctx.CanMove != nil && ctx.CanMove(actor.SpawnX, actor.SpawnY) {
			return actor.SpawnX, actor.SpawnY, true
		}
	}
	return 0, 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
