package lifecycle

import (
	"context"

	"blast-arena/server/logging"
)

const (
	EventRoomCreated   logging.EventType = "lifecycle.room_created"
	EventRoomDestroyed logging.EventType = "lifecycle.room_destroyed"
	EventRoomStarted   logging.EventType = "lifecycle.room_started"
	EventPlayerJoined  logging.EventType = "lifecycle.player_joined"
	EventPlayerLeft    logging.EventType = "lifecycle.player_left"
	EventPlayerExited  logging.EventType = "lifecycle.player_exited"
)

// RoomPayload carries the level backing a room event.
type RoomPayload struct {
	LevelID string `json:"levelId,omitempty"`
	Tick    uint64 `json:"tick,omitempty"`
}

func RoomCreated(ctx context.Context, pub logging.Publisher, roomID, levelID string) {
	publish(ctx, pub, logging.Event{
		Type:     EventRoomCreated,
		Actor:    logging.EntityRef{ID: roomID, Kind: logging.EntityKindRoom},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  RoomPayload{LevelID: levelID},
	})
}

func RoomDestroyed(ctx context.Context, pub logging.Publisher, roomID string, tick uint64) {
	publish(ctx, pub, logging.Event{
		Type:     EventRoomDestroyed,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: roomID, Kind: logging.EntityKindRoom},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

func RoomStarted(ctx context.Context, pub logging.Publisher, roomID string, tick uint64) {
	publish(ctx, pub, logging.Event{
		Type:     EventRoomStarted,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: roomID, Kind: logging.EntityKindRoom},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, playerID string) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, playerID string) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerLeft,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

func PlayerExited(ctx context.Context, pub logging.Publisher, tick uint64, playerID string) {
	publish(ctx, pub, logging.Event{
		Type:     EventPlayerExited,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: playerID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, event)
}
