package world

import (
	"context"

	"blast-arena/server/internal/grid"
	"blast-arena/server/logging"
	combatlog "blast-arena/server/logging/combat"
)

// placeBomb arms a bomb on the player's tile after capacity and occupancy
// checks. The bomb blocks the tile for all walkers until it detonates.
func (r *Room) placeBomb(p *playerState) (bool, string) {
	armed := 0
	for _, b := range r.bombs {
		if b.Exploded {
			continue
		}
		if b.Owner == p.ID {
			armed++
		}
		if b.Pos == p.Pos {
			return false, reasonBombOccupied
		}
	}
	if armed >= p.BombCapacity {
		return false, reasonBombLimit
	}

	r.bombs = append(r.bombs, &bombState{
		Owner:     p.ID,
		Pos:       p.Pos,
		FuseTicks: bombFuseTicks,
	})
	combatlog.BombPlaced(context.Background(), r.publisher, r.tick, p.ID, combatlog.BombPayload{
		X:         p.Pos.X,
		Y:         p.Pos.Y,
		Power:     p.BombPower,
		FuseTicks: bombFuseTicks,
	})
	return true, ""
}

// advanceBombs decrements fuses, detonates expired bombs together with every
// armed bomb their blasts reach, applies damage once per entity for the whole
// cascade, and retires explosions whose linger has elapsed.
func (r *Room) advanceBombs() {
	var worklist []*bombState
	for _, b := range r.bombs {
		if b.Exploded {
			b.LingerTicks--
			continue
		}
		b.FuseTicks--
		if b.FuseTicks <= 0 {
			worklist = append(worklist, b)
		}
	}

	// Chain detonation runs to a fixed point: each blast may reach further
	// armed bombs, which detonate in the same tick. Exploded is set before
	// scanning so a cycle of bombs cannot recurse.
	var blast []grid.Point
	damagedPlayers := make(map[string]struct{})
	damagedEnemies := make(map[string]struct{})
	for i := 0; i < len(worklist); i++ {
		b := worklist[i]
		if b.Exploded {
			continue
		}
		b.Exploded = true
		b.FuseTicks = 0
		b.LingerTicks = bombLingerTicks
		b.BlastTiles = r.computeBlast(b)
		blast = append(blast, b.BlastTiles...)

		combatlog.BombExploded(context.Background(), r.publisher, r.tick, b.Owner, combatlog.BombPayload{
			X:          b.Pos.X,
			Y:          b.Pos.Y,
			Power:      r.ownerPower(b.Owner),
			Chained:    i > 0,
			BlastTiles: len(b.BlastTiles),
		})

		for _, other := range r.bombs {
			if other.Exploded {
				continue
			}
			for _, tile := range b.BlastTiles {
				if other.Pos == tile {
					worklist = append(worklist, other)
					break
				}
			}
		}
	}

	if len(blast) > 0 {
		r.applyBlastDamage(blast, damagedPlayers, damagedEnemies)
	}

	// Retire lingered explosions.
	kept := r.bombs[:0]
	for _, b := range r.bombs {
		if b.Exploded && b.LingerTicks <= 0 {
			continue
		}
		kept = append(kept, b)
	}
	r.bombs = kept
}

// computeBlast casts four rays from the bomb tile. A ray stops before a hard
// wall and stops at the first breakable wall, which it converts to empty; the
// wall tile itself is part of the blast.
func (r *Room) computeBlast(b *bombState) []grid.Point {
	power := r.ownerPower(b.Owner)
	tiles := []grid.Point{b.Pos}
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		for step := 1; step <= power; step++ {
			x, y := b.Pos.X+d[0]*step, b.Pos.Y+d[1]*step
			tile := r.grid.TileAt(x, y)
			if tile == grid.TileHardWall {
				break
			}
			tiles = append(tiles, grid.Point{X: x, Y: y})
			if tile == grid.TileBreakableWall {
				r.grid.BreakWall(x, y)
				combatlog.WallDestroyed(context.Background(), r.publisher, r.tick, x, y)
				break
			}
		}
	}
	return tiles
}

// ownerPower resolves the blast radius for a bomb. Bombs of departed players
// keep detonating at the default power.
func (r *Room) ownerPower(owner string) int {
	if p := r.findPlayer(owner); p != nil {
		return p.BombPower
	}
	return DefaultBombPower
}

// applyBlastDamage damages every living entity standing in the blast set.
// The seen maps dedupe by entity, so overlapping simultaneous blasts within
// one cascade deal damage once.
func (r *Room) applyBlastDamage(blast []grid.Point, seenPlayers, seenEnemies map[string]struct{}) {
	inBlast := make(map[grid.Point]struct{}, len(blast))
	for _, tile := range blast {
		inBlast[tile] = struct{}{}
	}

	for _, p := range r.players {
		if !p.Alive || p.ReachedExit {
			continue
		}
		if _, hit := inBlast[p.Pos]; !hit {
			continue
		}
		if _, done := seenPlayers[p.ID]; done {
			continue
		}
		seenPlayers[p.ID] = struct{}{}
		r.damagePlayer(p, blastDamagePlayer, "blast")
	}

	for _, e := range r.enemies {
		if !e.Alive {
			continue
		}
		if _, hit := inBlast[e.Pos]; !hit {
			continue
		}
		if _, done := seenEnemies[e.ID]; done {
			continue
		}
		seenEnemies[e.ID] = struct{}{}
		e.Health -= blastDamageEnemy
		if e.Health < 0 {
			e.Health = 0
		}
		combatlog.DamageApplied(context.Background(), r.publisher, r.tick,
			logging.EntityRef{ID: e.ID, Kind: logging.EntityKindEnemy},
			combatlog.DamagePayload{Amount: blastDamageEnemy, Source: "blast", Remaining: e.Health})
		if e.Health == 0 {
			e.Alive = false
			e.corpseTicks = corpseGraceTicks
			combatlog.EnemyDefeated(context.Background(), r.publisher, r.tick, e.ID)
		}
	}
}

func (r *Room) damagePlayer(p *playerState, amount int, source string) {
	p.Health -= amount
	if p.Health < 0 {
		p.Health = 0
	}
	combatlog.DamageApplied(context.Background(), r.publisher, r.tick,
		logging.EntityRef{ID: p.ID, Kind: logging.EntityKindPlayer},
		combatlog.DamagePayload{Amount: amount, Source: source, Remaining: p.Health})
	if p.Health == 0 {
		p.Alive = false
		combatlog.PlayerDefeated(context.Background(), r.publisher, r.tick, p.ID)
	}
}
