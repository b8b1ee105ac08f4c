package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter EventType = "state_enter"
	EventStateLeave EventType = "state_leave"
	EventSignal     EventType = "signal"
	EventSegment    EventType = "segment"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// StateEvent represents entry into or exit from an automaton state.
type StateEvent struct {
	EventBase
	State string `json:"state"`
	// Peer is the previous state on enter and the next state on leave.
	Peer  string `json:"peer,omitempty"`
	Epoch uint64 `json:"epoch"`
}

// SignalEvent represents an event delivered to (or dropped before) the current state.
type SignalEvent struct {
	EventBase
	State   string `json:"state"`
	Name    string `json:"name"`
	Dropped bool   `json:"dropped,omitempty"`
}

// SegmentOutcome describes how a movement segment ended.
type SegmentOutcome string

const (
	SegmentReached     SegmentOutcome = "reached"
	SegmentInterrupted SegmentOutcome = "interrupted"
	SegmentFailed      SegmentOutcome = "failed"
)

// SegmentEvent represents the end of a movement segment towards a room.
type SegmentEvent struct {
	EventBase
	Target   string         `json:"target"`
	Outcome  SegmentOutcome `json:"outcome"`
	Duration time.Duration  `json:"duration"`
}

// LifecycleHooks defines callbacks for automaton observability.
type LifecycleHooks struct {
	OnStateEnter func(context.Context, *StateEvent)
	OnStateLeave func(context.Context, *StateEvent)
	OnSignal     func(context.Context, *SignalEvent)
	OnSegment    func(context.Context, *SegmentEvent)
	OnError      func(context.Context, error)
}

// MergeHooks fans every callback out to all non-nil hooks in order.
func MergeHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, h := range hooks {
		h := h
		merged.OnStateEnter = chain(merged.OnStateEnter, h.OnStateEnter)
		merged.OnStateLeave = chain(merged.OnStateLeave, h.OnStateLeave)
		merged.OnSignal = chain(merged.OnSignal, h.OnSignal)
		merged.OnSegment = chain(merged.OnSegment, h.OnSegment)
		merged.OnError = chain(merged.OnError, h.OnError)
	}
	return merged
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, v T) {
		a(ctx, v)
		b(ctx, v)
	}
}
