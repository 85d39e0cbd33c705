package sim

import (
	"errors"
	"testing"
	"time"
)

// scriptedEngine lets tests control Step outcomes and inspect Apply calls.
type scriptedEngine struct {
	applied  [][]Command
	stepErrs []error
	steps    int
	state    int
}

func (e *scriptedEngine) Apply(cmds []Command) {
	e.applied = append(e.applied, cmds)
	e.state += len(cmds)
}

func (e *scriptedEngine) Step(delta float64) error {
	var err error
	if e.steps < len(e.stepErrs) {
		err = e.stepErrs[e.steps]
	}
	e.steps++
	return err
}

func (e *scriptedEngine) Snapshot() Snapshot {
	return Snapshot{Tick: uint64(e.steps), Players: make([]Player, e.state)}
}

func testLoop(engine Engine) *Loop {
	return NewLoop(engine, LoopConfig{TickRate: 15, CommandCapacity: 16, PerActorLimit: 2}, LoopHooks{}, nil, nil)
}

func TestLoopPublishesInitialSnapshot(t *testing.T) {
	loop := testLoop(&scriptedEngine{})
	if snap := loop.Latest(); snap.Tick != 0 {
		t.Fatalf("initial snapshot tick = %d, want 0", snap.Tick)
	}
}

func TestAdvanceAppliesCommandsAndPublishes(t *testing.T) {
	engine := &scriptedEngine{}
	loop := testLoop(engine)

	if ok, _ := loop.Enqueue(Command{ActorID: "p1", Type: CommandMove}); !ok {
		t.Fatalf("enqueue failed")
	}
	result := loop.Advance(time.Now())
	if result.Err != nil {
		t.Fatalf("advance: %v", result.Err)
	}
	if len(engine.applied) != 1 || len(engine.applied[0]) != 1 {
		t.Fatalf("engine saw %v applies", engine.applied)
	}
	if result.Delta != 1.0/15.0 {
		t.Fatalf("delta = %v, want fixed 1/15", result.Delta)
	}
	if loop.Latest().Tick != 1 {
		t.Fatalf("published tick = %d, want 1", loop.Latest().Tick)
	}
	if loop.Pending() != 0 {
		t.Fatalf("queue should be drained")
	}
}

func TestAdvanceKeepsPreviousSnapshotOnError(t *testing.T) {
	engine := &scriptedEngine{stepErrs: []error{nil, errors.New("invariant violated")}}
	loop := testLoop(engine)

	first := loop.Advance(time.Now())
	if first.Err != nil {
		t.Fatalf("first advance: %v", first.Err)
	}
	published := loop.Latest()

	second := loop.Advance(time.Now())
	if second.Err == nil {
		t.Fatalf("second advance should fail")
	}
	if got := loop.Latest(); got.Tick != published.Tick {
		t.Fatalf("failed tick must not publish: tick %d -> %d", published.Tick, got.Tick)
	}
	if second.Snapshot.Tick != published.Tick {
		t.Fatalf("result snapshot should be the previous one")
	}
}

func TestEnqueuePerActorThrottle(t *testing.T) {
	loop := testLoop(&scriptedEngine{})

	for i := 0; i < 2; i++ {
		if ok, _ := loop.Enqueue(Command{ActorID: "p1", Type: CommandMove}); !ok {
			t.Fatalf("enqueue %d should succeed", i)
		}
	}
	ok, reason := loop.Enqueue(Command{ActorID: "p1", Type: CommandMove})
	if ok || reason != CommandRejectQueueLimit {
		t.Fatalf("third enqueue = (%v,%q), want queue_limit rejection", ok, reason)
	}

	// Other actors are unaffected.
	if ok, _ := loop.Enqueue(Command{ActorID: "p2", Type: CommandMove}); !ok {
		t.Fatalf("other actor should not be throttled")
	}

	// The throttle resets when the tick drains the queue.
	loop.Advance(time.Now())
	if ok, _ := loop.Enqueue(Command{ActorID: "p1", Type: CommandMove}); !ok {
		t.Fatalf("throttle should reset after a tick")
	}
}

func TestEnqueueQueueFull(t *testing.T) {
	engine := &scriptedEngine{}
	loop := NewLoop(engine, LoopConfig{TickRate: 15, CommandCapacity: 2}, LoopHooks{}, nil, nil)

	loop.Enqueue(Command{ActorID: "a"})
	loop.Enqueue(Command{ActorID: "b"})
	ok, reason := loop.Enqueue(Command{ActorID: "c"})
	if ok || reason != CommandRejectQueueFull {
		t.Fatalf("enqueue on full buffer = (%v,%q), want queue_full", ok, reason)
	}
}

func TestRunStopsOnClose(t *testing.T) {
	engine := &scriptedEngine{}
	ticks := make(chan StepResult, 8)
	loop := NewLoop(engine, LoopConfig{TickRate: 100, CommandCapacity: 4}, LoopHooks{
		AfterStep: func(result StepResult) { ticks <- result },
	}, nil, nil)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		loop.Run(stop)
		close(done)
	}()

	select {
	case <-ticks:
	case <-time.After(2 * time.Second):
		t.Fatalf("loop never ticked")
	}
	close(stop)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop")
	}
}
