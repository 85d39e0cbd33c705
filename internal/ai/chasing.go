package ai

// ChasingStrategy patrols the spawn row or spawn column fixed at creation,
// oscillating along that line and reversing at obstacles and boundaries. It
// never leaves the line, not even toward a player.
type ChasingStrategy struct{}

func (ChasingStrategy) DecideMove(actor *Actor, ctx Context) (int, int, bool) {
	bb := actor.Blackboard
	if bb == nil {
		return 0, 0, false
	}
	if bb.Direction == 0 {
		bb.Direction = 1
	}

	// Displaced off the patrol line: step straight back onto it.
	if bb.Horizontal && actor.Y != actor.SpawnY {
		ny := actor.Y + sign(actor.SpawnY-actor.Y)
		if ctx.CanMove != nil && ctx.CanMove(actor.X, ny) {
			return actor.X, ny, true
		}
		return 0, 0, false
	}
	if !bb.Horizontal && actor.X != actor.SpawnX {
		nx := actor.X + sign(actor.SpawnX-actor.X)
		if ctx.CanMove != nil && ctx.CanMove(nx, actor.Y) {
			return nx, actor.Y, true
		}
		return 0, 0, false
	}

	nx, ny := alongLine(actor, bb.Horizontal, bb.Direction)
	if ctx.CanMove != nil && ctx.CanMove(nx, ny) {
		bb.Stuck = 0
		return nx, ny, true
	}

	// Blocked: reverse and try the other way this same decision.
	bb.Direction = -bb.Direction
	nx, ny = alongLine(actor, bb.Horizontal, bb.Direction)
	if ctx.CanMove != nil && ctx.CanMove(nx, ny) {
		bb.Stuck = 0
		return nx, ny, true
	}

	bb.Stuck++
	return 0, 0, false
}

func alongLine(actor *Actor, horizontal bool, direction int) (int, int) {
	if horizontal {
		return actor.X + direction, actor.SpawnY
	}
	return actor.SpawnX, actor.Y + direction
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
