package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"blast-arena/server/internal/telemetry"
)

const (
	// CommandRejectQueueLimit indicates a command was dropped due to
	// per-actor queue throttling.
	CommandRejectQueueLimit = "queue_limit"
	// CommandRejectQueueFull indicates the global command buffer is saturated.
	CommandRejectQueueFull = "queue_full"

	tickDurationMetricKey = "sim_tick_duration_micros"
)

// LoopConfig tunes the command buffer and tick loop orchestration.
type LoopConfig struct {
	TickRate        int
	CommandCapacity int
	PerActorLimit   int
}

// StepResult reports the outcome of one tick advance.
type StepResult struct {
	Tick     uint64
	Now      time.Time
	Delta    float64
	Snapshot Snapshot
	Commands []Command
	Err      error
	Duration time.Duration
	Budget   time.Duration
}

// LoopHooks lets the owner observe committed (and failed) ticks.
type LoopHooks struct {
	AfterStep func(StepResult)
}

// Loop coordinates command ingestion, the fixed-timestep runner, and the
// atomically swapped snapshot. Producers enqueue concurrently; the loop
// goroutine is the only caller of the engine.
type Loop struct {
	core    Engine
	buffer  *CommandBuffer
	hooks   LoopHooks
	config  LoopConfig
	logger  telemetry.Logger
	metrics telemetry.Metrics

	queueMu       sync.Mutex
	perActorCount map[string]int

	tick      uint64
	published atomic.Pointer[Snapshot]
}

// NewLoop wraps the provided engine with a ring-buffer queue and publishes
// its initial snapshot so readers never observe an empty state.
func NewLoop(core Engine, cfg LoopConfig, hooks LoopHooks, logger telemetry.Logger, metrics telemetry.Metrics) *Loop {
	if core == nil {
		return nil
	}
	loop := &Loop{
		core:          core,
		buffer:        NewCommandBuffer(cfg.CommandCapacity, metrics),
		hooks:         hooks,
		config:        cfg,
		logger:        logger,
		metrics:       metrics,
		perActorCount: make(map[string]int),
	}
	initial := core.Snapshot()
	loop.published.Store(&initial)
	return loop
}

// Enqueue stages a command, enforcing per-actor throttling and capacity
// limits. It never blocks and never touches room state.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, CommandRejectQueueFull
	}
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		l.queueMu.Lock()
		count := l.perActorCount[cmd.ActorID]
		if count >= l.config.PerActorLimit {
			l.queueMu.Unlock()
			if l.logger != nil {
				l.logger.Printf("[backpressure] dropping command actor=%s type=%s limit=%d", cmd.ActorID, cmd.Type, l.config.PerActorLimit)
			}
			return false, CommandRejectQueueLimit
		}
		l.perActorCount[cmd.ActorID] = count + 1
		l.queueMu.Unlock()
	}
	if !l.buffer.Push(cmd) {
		return false, CommandRejectQueueFull
	}
	return true, ""
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Latest returns the last fully committed snapshot.
func (l *Loop) Latest() Snapshot {
	if l == nil {
		return Snapshot{}
	}
	return *l.published.Load()
}

// Tick reports how many ticks have been attempted.
func (l *Loop) Tick() uint64 {
	if l == nil {
		return 0
	}
	return atomic.LoadUint64(&l.tick)
}

// Advance executes a single simulation step using the staged commands. The
// delta is always the fixed tick budget, never wall-clock jitter, so fuse
// and chain timing replays exactly within a process. A step that reports
// corruption publishes nothing; the previous snapshot stays current.
func (l *Loop) Advance(now time.Time) StepResult {
	if l == nil {
		return StepResult{}
	}
	tick := atomic.AddUint64(&l.tick, 1)
	commands := l.drainCommands()

	start := time.Now()
	l.core.Apply(commands)
	err := l.core.Step(l.delta())
	duration := time.Since(start)

	result := StepResult{
		Tick:     tick,
		Now:      now,
		Delta:    l.delta(),
		Commands: commands,
		Err:      err,
		Duration: duration,
		Budget:   l.budget(),
	}
	if err == nil {
		snapshot := l.core.Snapshot()
		l.published.Store(&snapshot)
		result.Snapshot = snapshot
	} else {
		result.Snapshot = l.Latest()
	}
	if l.metrics != nil {
		l.metrics.Store(tickDurationMetricKey, uint64(duration.Microseconds()))
	}
	return result
}

// Run drives the fixed-timestep loop until the stop channel closes.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}
	ticker := time.NewTicker(l.budget())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			result := l.Advance(now)
			if result.Err != nil && l.logger != nil {
				l.logger.Printf("tick %d failed: %v", result.Tick, result.Err)
			}
			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	l.queueMu.Unlock()
	return l.buffer.Drain()
}

func (l *Loop) tickRate() int {
	if l.config.TickRate > 0 {
		return l.config.TickRate
	}
	return 15
}

func (l *Loop) delta() float64 {
	return 1.0 / float64(l.tickRate())
}

func (l *Loop) budget() time.Duration {
	return time.Second / time.Duration(l.tickRate())
}
