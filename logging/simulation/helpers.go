package simulation

import (
	"context"

	"blast-arena/server/logging"
)

const (
	// EventTickCorruption is emitted when post-step validation finds an
	// invariant violation and the tick is rolled back.
	EventTickCorruption logging.EventType = "simulation.tick_corruption"
	// EventTickBudgetOverrun is emitted when a step exceeds the tick budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventIntentRejected is emitted when a queued intent fails validation.
	EventIntentRejected logging.EventType = "simulation.intent_rejected"
)

// TickCorruptionPayload names the violated invariant.
type TickCorruptionPayload struct {
	Reason string `json:"reason"`
}

// TickBudgetOverrunPayload captures timing details for a budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
}

// IntentRejectedPayload names the rejected intent and the reason code.
type IntentRejectedPayload struct {
	Intent string `json:"intent"`
	Reason string `json:"reason"`
}

func TickCorruption(ctx context.Context, pub logging.Publisher, tick uint64, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickCorruption,
		Tick:     tick,
		Severity: logging.SeverityError,
		Category: logging.CategorySimulation,
		Payload:  TickCorruptionPayload{Reason: reason},
	})
}

func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

func IntentRejected(ctx context.Context, pub logging.Publisher, tick uint64, actorID, intent, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventIntentRejected,
		Tick:     tick,
		Actor:    logging.EntityRef{ID: actorID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityDebug,
		Category: logging.CategorySimulation,
		Payload:  IntentRejectedPayload{Intent: intent, Reason: reason},
	})
}
