package world

// Gameplay constants. Durations are expressed in ticks at the fixed tick
// rate so simulation timing is independent of wall-clock jitter.
const (
	TickRate = 15 // ticks per second

	MaxRoomPlayers  = 4
	PlayerMaxHealth = 100

	DefaultBombCapacity = 1
	DefaultBombPower    = 1
	DefaultSpeed        = 1

	bombFuseTicks   = 4 * TickRate // 4.0s armed
	bombLingerTicks = 1 * TickRate // 1.0s explosion linger

	blastDamagePlayer = 20
	blastDamageEnemy  = 50

	// Contact damage from a moving enemy adjacent to a player.
	contactDamage            = 10
	contactCooldownInitial   = 0.5 // seconds, first touch
	contactCooldownSustained = 0.2 // seconds, sustained contact
	contactSustainedAfter    = 3.0 // seconds of continuous contact

	// Dead enemies linger for a short grace period before removal.
	corpseGraceTicks = 2 * TickRate
)

// Per-variant enemy tuning, from the single-player originals: static 1.6s,
// chasing 0.8s, smart 2.0s between moves.
const (
	staticMoveIntervalTicks  = 24
	chasingMoveIntervalTicks = 12
	smartMoveIntervalTicks   = 30

	staticMaxHealth  = 20
	chasingMaxHealth = 30
	smartMaxHealth   = 40
)
