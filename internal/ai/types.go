package ai

import "math/rand"

// Type tags an enemy with its movement behavior.
type Type string

const (
	TypeStatic  Type = "static"
	TypeChasing Type = "chasing"
	TypeSmart   Type = "smart"
)

// ParseType validates a behavior tag from level data.
func ParseType(raw string) (Type, bool) {
	switch Type(raw) {
	case TypeStatic, TypeChasing, TypeSmart:
		return Type(raw), true
	default:
		return "", false
	}
}

// Blackboard holds per-enemy strategy state that survives between decisions.
type Blackboard struct {
	// Chasing: axis and direction of the patrol line, fixed at creation.
	Horizontal bool
	Direction  int
	Stuck      int
}

// Actor is the strategy-facing view of one enemy.
type Actor struct {
	ID         string
	Type       Type
	X, Y       int
	SpawnX     int
	SpawnY     int
	Blackboard *Blackboard
}

// Context supplies a decision with everything it may consult. CanMove folds
// in the room's collision resolver plus the tiles already claimed by other
// enemies this tick; strategies stay pure over it.
type Context struct {
	Tick          uint64
	RNG           *rand.Rand
	CanMove       func(x, y int) bool
	NearestPlayer func() (x, y int, ok bool)
}

// Strategy decides the next tile for an enemy, or reports no move. The
// returned tile is re-validated by the caller immediately before commit.
type Strategy interface {
	DecideMove(actor *Actor, ctx Context) (x, y int, ok bool)
}
