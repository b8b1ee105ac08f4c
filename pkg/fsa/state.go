package fsa

import "context"

// State is a node of the automaton.
type State interface {
	// Name identifies the state. It must be stable.
	Name() string
	// OnEnter runs once per entry, including self-transitions.
	OnEnter(ctx context.Context) error
	// OnEvent handles an event while the state is current.
	OnEvent(ctx context.Context, event string) error
}

// Exiter is implemented by states that release resources when left.
type Exiter interface {
	OnExit(ctx context.Context)
}
