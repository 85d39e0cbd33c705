package world

import "blast-arena/server/internal/grid"

// contactState tracks one player's ongoing contact with enemies. Damage
// repeats on a cooldown that tightens after sustained contact.
type contactState struct {
	enemyID  string
	duration float64
	cooldown float64
}

// applyContactDamage runs after movement has settled for the tick. A player
// adjacent to a living enemy takes damage immediately on first touch, then on
// a cooldown while the contact persists.
func (r *Room) applyContactDamage(delta float64) {
	for _, p := range r.players {
		if !p.Alive || p.ReachedExit {
			p.contact = contactState{}
			continue
		}
		enemy := r.touchingEnemy(p)
		if enemy == nil {
			p.contact = contactState{}
			continue
		}

		if p.contact.enemyID == "" {
			p.contact = contactState{enemyID: enemy.ID, cooldown: contactCooldownInitial}
			r.damagePlayer(p, contactDamage, "contact")
			continue
		}

		p.contact.enemyID = enemy.ID
		p.contact.duration += delta
		p.contact.cooldown -= delta
		if p.contact.cooldown <= 0 {
			r.damagePlayer(p, contactDamage, "contact")
			next := contactCooldownInitial
			if p.contact.duration >= contactSustainedAfter {
				next = contactCooldownSustained
			}
			p.contact.cooldown = next
		}
	}
}

// touchingEnemy returns the first living enemy, in spawn order, on or next to
// the player's tile.
func (r *Room) touchingEnemy(p *playerState) *enemyState {
	for _, e := range r.enemies {
		if !e.Alive {
			continue
		}
		if grid.ManhattanDistance(e.Pos, p.Pos) <= 1 {
			return e
		}
	}
	return nil
}
