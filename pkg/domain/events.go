package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter EventType = "step_enter"
	EventStepLeave EventType = "step_leave"
	EventBlocked   EventType = "step_blocked"
	EventLocate    EventType = "locate"
	EventSubmit    EventType = "submit"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into, exit from, or a blocked exit out of a step.
type StepEvent struct {
	EventBase
	Step      Step      `json:"step"`
	Direction Direction `json:"direction,omitempty"`
	Missing   []string  `json:"missing,omitempty"`
}

// LocateOutcome is the result class of a geolocation request.
type LocateOutcome string

const (
	LocateStarted   LocateOutcome = "started"
	LocateResolved  LocateOutcome = "resolved"
	LocateFailed    LocateOutcome = "failed"
	LocateStale     LocateOutcome = "stale"
	LocateCancelled LocateOutcome = "cancelled"
)

// LocateEvent represents a transition of the geolocation sub-flow.
type LocateEvent struct {
	EventBase
	Generation uint64        `json:"generation"`
	Outcome    LocateOutcome `json:"outcome"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// SubmitEvent represents a record handed to the sink.
type SubmitEvent struct {
	EventBase
	OwnerType OwnerType `json:"owner_type"`
	Slots     SlotBand  `json:"slots"`
	IsError   bool      `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
	OnBlocked   func(context.Context, *StepEvent)
	OnLocate    func(context.Context, *LocateEvent)
	OnSubmit    func(context.Context, *SubmitEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter: chain(h.OnStepEnter, other.OnStepEnter),
		OnStepLeave: chain(h.OnStepLeave, other.OnStepLeave),
		OnBlocked:   chain(h.OnBlocked, other.OnBlocked),
		OnLocate:    chain(h.OnLocate, other.OnLocate),
		OnSubmit:    chain(h.OnSubmit, other.OnSubmit),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
