package sim

// Engine is the surface the loop drives. Apply ingests drained commands in
// arrival order; rejected intents are engine-internal no-ops, never errors.
// Step advances one fixed tick and reports corruption; a failed step leaves
// the previously published snapshot in place.
type Engine interface {
	Apply([]Command)
	Step(delta float64) error
	Snapshot() Snapshot
}
