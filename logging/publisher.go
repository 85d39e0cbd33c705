package logging

import (
	"context"
	"time"
)

type EventType string

type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

type EntityKind string

const (
	EntityKindUnknown EntityKind = "unknown"
	EntityKindPlayer  EntityKind = "player"
	EntityKindEnemy   EntityKind = "enemy"
	EntityKindBomb    EntityKind = "bomb"
	EntityKindRoom    EntityKind = "room"
)

const (
	CategoryGameplay   = "gameplay"
	CategoryCombat     = "combat"
	CategorySimulation = "simulation"
	CategoryLifecycle  = "lifecycle"
	CategorySystem     = "system"
)

// Event is the unit the router fans out to sinks.
type Event struct {
	Type     EventType      `json:"type"`
	Tick     uint64         `json:"tick"`
	Time     time.Time      `json:"time"`
	Actor    EntityRef      `json:"actor"`
	Targets  []EntityRef    `json:"targets,omitempty"`
	Severity Severity       `json:"severity"`
	Category string         `json:"category,omitempty"`
	RoomID   string         `json:"roomId,omitempty"`
	Payload  any            `json:"payload,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type PublisherFunc func(ctx context.Context, event Event)

func (f PublisherFunc) Publish(ctx context.Context, event Event) {
	if f == nil {
		return
	}
	f(ctx, event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

func NopPublisher() Publisher {
	return nopPublisher{}
}

// WithRoom returns a publisher that stamps every event with the room id.
func WithRoom(p Publisher, roomID string) Publisher {
	if p == nil {
		return NopPublisher()
	}
	if roomID == "" {
		return p
	}
	return PublisherFunc(func(ctx context.Context, event Event) {
		if event.RoomID == "" {
			event.RoomID = roomID
		}
		p.Publish(ctx, event)
	})
}

func cloneEvent(event Event) Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		copied := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			copied[k] = v
		}
		cloned.Extra = copied
	}
	return cloned
}

func (e Event) WithExtra(key string, value any) Event {
	if e.Extra == nil {
		e.Extra = make(map[string]any, 1)
	}
	e.Extra[key] = value
	return e
}
