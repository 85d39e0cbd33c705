package ai

import (
	"math/rand"
	"testing"
)

func openContext(rng *rand.Rand) Context {
	return Context{
		RNG:     rng,
		CanMove: func(x, y int) bool { return true },
	}
}

func TestParseType(t *testing.T) {
	for _, raw := range []string{"static", "chasing", "smart"} {
		if _, ok := ParseType(raw); !ok {
			t.Fatalf("ParseType(%q) should succeed", raw)
		}
	}
	if _, ok := ParseType("boss"); ok {
		t.Fatalf("unknown type should fail")
	}
}

func TestLookupCoversRegisteredTypes(t *testing.T) {
	for _, typ := range []Type{TypeStatic, TypeChasing, TypeSmart} {
		if _, ok := Lookup(typ); !ok {
			t.Fatalf("no strategy registered for %s", typ)
		}
	}
}

func TestStaticStaysNearSpawn(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	actor := &Actor{ID: "e1", Type: TypeStatic, X: 5, Y: 5, SpawnX: 5, SpawnY: 5}
	ctx := openContext(rng)

	for i := 0; i < 1000; i++ {
		x, y, ok := StaticStrategy{}.DecideMove(actor, ctx)
		if !ok {
			continue
		}
		if d := abs(x-actor.SpawnX) + abs(y-actor.SpawnY); d > 1 {
			t.Fatalf("decision %d left spawn radius: (%d,%d)", i, x, y)
		}
		actor.X, actor.Y = x, y
	}
}

func TestStaticReturnsTowardSpawnWhenDisplaced(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	actor := &Actor{ID: "e1", Type: TypeStatic, X: 8, Y: 5, SpawnX: 5, SpawnY: 5}
	// Every neighbor of (8,5) is outside the spawn radius; only the spawn
	// fallback can fire, and it needs the spawn tile itself to be free.
	ctx := Context{
		RNG:     rng,
		CanMove: func(x, y int) bool { return x == 5 && y == 5 },
	}
	x, y, ok := StaticStrategy{}.DecideMove(actor, ctx)
	if !ok || x != 5 || y != 5 {
		t.Fatalf("displaced enemy should head to spawn, got (%d,%d,%v)", x, y, ok)
	}
}

func TestChasingNeverLeavesPatrolLine(t *testing.T) {
	bb := &Blackboard{Horizontal: true, Direction: 1}
	actor := &Actor{ID: "e1", Type: TypeChasing, X: 3, Y: 4, SpawnX: 3, SpawnY: 4, Blackboard: bb}
	ctx := Context{
		// Corridor from x=1 to x=5 on row 4.
		CanMove: func(x, y int) bool { return y == 4 && x >= 1 && x <= 5 },
	}

	for i := 0; i < 200; i++ {
		x, y, ok := ChasingStrategy{}.DecideMove(actor, ctx)
		if !ok {
			t.Fatalf("decision %d: open corridor should always yield a move", i)
		}
		if y != 4 {
			t.Fatalf("decision %d left the patrol row: (%d,%d)", i, x, y)
		}
		actor.X, actor.Y = x, y
	}
	if actor.X < 1 || actor.X > 5 {
		t.Fatalf("enemy escaped the corridor at x=%d", actor.X)
	}
}

func TestChasingReversesAtObstacle(t *testing.T) {
	bb := &Blackboard{Horizontal: true, Direction: 1}
	actor := &Actor{ID: "e1", Type: TypeChasing, X: 4, Y: 4, SpawnX: 4, SpawnY: 4, Blackboard: bb}
	ctx := Context{
		CanMove: func(x, y int) bool { return y == 4 && x == 3 },
	}

	x, y, ok := ChasingStrategy{}.DecideMove(actor, ctx)
	if !ok || x != 3 || y != 4 {
		t.Fatalf("blocked ahead should reverse, got (%d,%d,%v)", x, y, ok)
	}
	if bb.Direction != -1 {
		t.Fatalf("direction should have flipped, got %d", bb.Direction)
	}
}

func TestChasingHoldsWhenFullyBlocked(t *testing.T) {
	bb := &Blackboard{Horizontal: false, Direction: 1}
	actor := &Actor{ID: "e1", Type: TypeChasing, X: 2, Y: 3, SpawnX: 2, SpawnY: 3, Blackboard: bb}
	ctx := Context{CanMove: func(x, y int) bool { return false }}

	if _, _, ok := (ChasingStrategy{}).DecideMove(actor, ctx); ok {
		t.Fatalf("fully blocked enemy should hold")
	}
	if bb.Stuck != 1 {
		t.Fatalf("stuck counter = %d, want 1", bb.Stuck)
	}
}

func TestSmartClosesDistanceMonotonically(t *testing.T) {
	actor := &Actor{ID: "e1", Type: TypeSmart, X: 8, Y: 6, SpawnX: 8, SpawnY: 6}
	px, py := 1, 1
	ctx := Context{
		CanMove:       func(x, y int) bool { return true },
		NearestPlayer: func() (int, int, bool) { return px, py, true },
	}

	prev := abs(px-actor.X) + abs(py-actor.Y)
	for i := 0; i < 50; i++ {
		x, y, ok := SmartStrategy{}.DecideMove(actor, ctx)
		if !ok {
			break
		}
		actor.X, actor.Y = x, y
		dist := abs(px-actor.X) + abs(py-actor.Y)
		if dist >= prev {
			t.Fatalf("decision %d did not close distance: %d -> %d", i, prev, dist)
		}
		prev = dist
	}
	if prev != 0 {
		t.Fatalf("enemy should reach the target on an open field, distance %d", prev)
	}
}

func TestSmartHoldsWhenNoImprovement(t *testing.T) {
	actor := &Actor{ID: "e1", Type: TypeSmart, X: 4, Y: 4, SpawnX: 4, SpawnY: 4}
	ctx := Context{
		// Only moves that increase distance are available.
		CanMove:       func(x, y int) bool { return x > 4 },
		NearestPlayer: func() (int, int, bool) { return 1, 4, true },
	}
	if _, _, ok := (SmartStrategy{}).DecideMove(actor, ctx); ok {
		t.Fatalf("smart enemy should hold when nothing improves the distance")
	}
}

func TestSmartHoldsWithoutTargets(t *testing.T) {
	actor := &Actor{ID: "e1", Type: TypeSmart, X: 4, Y: 4, SpawnX: 4, SpawnY: 4}
	ctx := Context{
		CanMove:       func(x, y int) bool { return true },
		NearestPlayer: func() (int, int, bool) { return 0, 0, false },
	}
	if _, _, ok := (SmartStrategy{}).DecideMove(actor, ctx); ok {
		t.Fatalf("no living players means no move")
	}
}
