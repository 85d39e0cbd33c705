package sim

import "time"

// CommandType enumerates the intents the gateway accepts.
type CommandType string

const (
	CommandJoin      CommandType = "Join"
	CommandMove      CommandType = "Move"
	CommandPlaceBomb CommandType = "PlaceBomb"
	CommandReady     CommandType = "Ready"
	CommandLeave     CommandType = "Leave"
)

// Direction is a four-way grid movement.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// ParseDirection validates a client-supplied direction string.
func ParseDirection(raw string) (Direction, bool) {
	switch Direction(raw) {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return Direction(raw), true
	default:
		return "", false
	}
}

// Delta converts the direction into a tile offset.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// MoveCommand carries the requested movement direction.
type MoveCommand struct {
	Direction Direction `json:"direction"`
}

// JoinCommand carries the display name for a new player.
type JoinCommand struct {
	Name string `json:"name"`
}

// Command represents an intent captured for processing on the next tick.
// Disconnects travel through here as Leave commands so that the tick loop
// remains the only writer of room state.
type Command struct {
	OriginTick uint64       `json:"originTick"`
	ActorID    string       `json:"actorId"`
	Type       CommandType  `json:"type"`
	IssuedAt   time.Time    `json:"issuedAt"`
	Move       *MoveCommand `json:"move,omitempty"`
	Join       *JoinCommand `json:"join,omitempty"`
}
