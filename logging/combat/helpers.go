package combat

import (
	"context"

	"blast-arena/server/logging"
)

const (
	// EventBombPlaced is emitted when a validated place intent arms a bomb.
	EventBombPlaced logging.EventType = "combat.bomb_placed"
	// EventBombExploded is emitted once per detonation, chains included.
	EventBombExploded logging.EventType = "combat.bomb_exploded"
	// EventWallDestroyed is emitted for each breakable wall a blast converts.
	EventWallDestroyed logging.EventType = "combat.wall_destroyed"
	// EventDamageApplied is emitted when blast or contact damage lands.
	EventDamageApplied logging.EventType = "combat.damage_applied"
	// EventEnemyDefeated is emitted when an enemy's health reaches zero.
	EventEnemyDefeated logging.EventType = "combat.enemy_defeated"
	// EventPlayerDefeated is emitted when a player's health reaches zero.
	EventPlayerDefeated logging.EventType = "combat.player_defeated"
)

// BombPayload carries the bomb position and blast parameters.
type BombPayload struct {
	X          int  `json:"x"`
	Y          int  `json:"y"`
	Power      int  `json:"power,omitempty"`
	FuseTicks  int  `json:"fuseTicks,omitempty"`
	Chained    bool `json:"chained,omitempty"`
	BlastTiles int  `json:"blastTiles,omitempty"`
}

// DamagePayload carries the amount and the source of a health change.
type DamagePayload struct {
	Amount    int    `json:"amount"`
	Source    string `json:"source"`
	Remaining int    `json:"remaining"`
}

func BombPlaced(ctx context.Context, pub logging.Publisher, tick uint64, owner string, payload BombPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventBombPlaced,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: owner, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

func BombExploded(ctx context.Context, pub logging.Publisher, tick uint64, owner string, payload BombPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventBombExploded,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: owner, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

func WallDestroyed(ctx context.Context, pub logging.Publisher, tick uint64, x, y int) {
	publish(ctx, pub, logging.Event{
		Type:     EventWallDestroyed,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  BombPayload{X: x, Y: y},
	})
}

func DamageApplied(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload DamagePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventDamageApplied,
		Tick:     tick,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

func EnemyDefeated(ctx context.Context, pub logging.Publisher, tick uint64, enemyID string) {
	publish(ctx, pub, logging.Event{
		Type:     EventEnemyDefeated,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: enemyID, Kind: logging.EntityKindEnemy},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	})
}

func PlayerDefeated(ctx context.Context, pub logging.Publisher, tick uint64, playerID string) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerDefeated,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event)
}
