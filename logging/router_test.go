package logging_test

import (
	"context"
	"testing"
	"time"

	"blast-arena/server/logging"
	"blast-arena/server/logging/sinks"
)

func newTestRouter(t *testing.T, cfg logging.Config, sink logging.Sink) *logging.Router {
	t.Helper()
	clock := logging.ClockFunc(func() time.Time {
		return time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	})
	router, err := logging.NewRouter(clock, cfg, []logging.NamedSink{{Name: "memory", Sink: sink}})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	return router
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close router: %v", err)
	}
}

func TestRouterDeliversAndStampsEvents(t *testing.T) {
	memory := sinks.NewMemory()
	router := newTestRouter(t, logging.Config{BufferSize: 16}, memory)

	router.Publish(context.Background(), logging.Event{
		Type:     "player-defeated",
		Tick:     42,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Type != "player-defeated" || events[0].Tick != 42 {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if events[0].Time.IsZero() {
		t.Fatalf("router should stamp the clock time")
	}
	if stats := router.Stats(); stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	memory := sinks.NewMemory()
	router := newTestRouter(t, logging.Config{
		BufferSize:      16,
		MinimumSeverity: logging.SeverityWarn,
	}, memory)

	router.Publish(context.Background(), logging.Event{Type: "tick-applied", Severity: logging.SeverityDebug})
	router.Publish(context.Background(), logging.Event{Type: "tick-corruption", Severity: logging.SeverityError})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 || events[0].Type != "tick-corruption" {
		t.Fatalf("severity filter kept %+v", events)
	}
}

func TestRouterIgnoresUntypedAndClosed(t *testing.T) {
	memory := sinks.NewMemory()
	router := newTestRouter(t, logging.Config{BufferSize: 16}, memory)

	router.Publish(context.Background(), logging.Event{Severity: logging.SeverityInfo})
	closeRouter(t, router)
	router.Publish(context.Background(), logging.Event{Type: "late", Severity: logging.SeverityInfo})

	if events := memory.Events(); len(events) != 0 {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestWithRoomStampsRoomID(t *testing.T) {
	var got logging.Event
	inner := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		got = event
	})

	logging.WithRoom(inner, "room-7").Publish(context.Background(), logging.Event{Type: "bomb-planted"})
	if got.RoomID != "room-7" {
		t.Fatalf("room id = %q", got.RoomID)
	}

	// An explicit room id wins over the stamp.
	logging.WithRoom(inner, "room-7").Publish(context.Background(), logging.Event{Type: "bomb-planted", RoomID: "room-9"})
	if got.RoomID != "room-9" {
		t.Fatalf("room id = %q", got.RoomID)
	}
}

func TestMetricsTable(t *testing.T) {
	metrics := logging.NewMetrics()
	metrics.TelemetryAdd("ticks_total", 2)
	metrics.TelemetryAdd("ticks_total", 3)
	metrics.TelemetryStore("rooms_live", 4)

	snap := metrics.Snapshot()
	if snap["ticks_total"] != 5 || snap["rooms_live"] != 4 {
		t.Fatalf("snapshot = %v", snap)
	}

	// Mutating the copy must not touch the table.
	snap["ticks_total"] = 0
	if metrics.Snapshot()["ticks_total"] != 5 {
		t.Fatalf("snapshot should be a copy")
	}
}
