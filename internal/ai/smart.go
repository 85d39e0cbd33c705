package ai

// SmartStrategy greedily closes the Manhattan distance to the nearest
// living player, one cardinal step per decision. Candidate order is fixed
// (+x, -x, +y, -y) so ties break deterministically; the enemy holds when no
// neighbor strictly improves the distance.
type SmartStrategy struct{}

var smartCandidates = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func (SmartStrategy) DecideMove(actor *Actor, ctx Context) (int, int, bool) {
	if ctx.NearestPlayer == nil {
		return 0, 0, false
	}
	px, py, ok := ctx.NearestPlayer()
	if !ok {
		return 0, 0, false
	}

	current := abs(px-actor.X) + abs(py-actor.Y)
	if current == 0 {
		return 0, 0, false
	}

	bestX, bestY := 0, 0
	bestDist := current
	found := false
	for _, d := range smartCandidates {
		nx, ny := actor.X+d[0], actor.Y+d[1]
		if ctx.CanMove == nil || !ctx.CanMove(nx, ny) {
			continue
		}
		dist := abs(px-nx) + abs(py-ny)
		if dist < bestDist {
			bestDist = dist
			bestX, bestY = nx, ny
			found = true
		}
	}
	if !found {
		return 0, 0, false
	}
	return bestX, bestY, true
}
