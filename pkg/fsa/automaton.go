package fsa

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// Automaton holds the registered states and the current one.
type Automaton struct {
	states  map[string]State
	current State

	// name and epoch are published for readers outside the dispatcher.
	name  atomic.Value
	epoch atomic.Uint64

	sessionID string
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option configures an Automaton.
type Option func(*Automaton)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Automaton) {
		a.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Automaton) {
		a.hooks = hooks
	}
}

// WithSessionID tags hook events and log lines.
func WithSessionID(id string) Option {
	return func(a *Automaton) {
		a.sessionID = id
	}
}

// New creates an empty automaton.
func New(opts ...Option) *Automaton {
	a := &Automaton{
		states: make(map[string]State),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sessionID != "" {
		a.logger = a.logger.With("session", a.sessionID)
	}
	a.name.Store("")
	return a
}

// AddState registers a state. A state with the same name is replaced.
func (a *Automaton) AddState(s State) {
	a.states[s.Name()] = s
}

// Start enters the named state.
func (a *Automaton) Start(ctx context.Context, name string) error {
	next, ok := a.states[name]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownState, name)
	}
	a.logger.Debug("Automaton started", "state", name)
	return a.enter(ctx, next, "")
}

// ChangeState leaves the current state and enters the named one.
// Entering the current state again re-runs its OnEnter.
func (a *Automaton) ChangeState(ctx context.Context, name string) error {
	next, ok := a.states[name]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownState, name)
	}

	prev := ""
	if a.current != nil {
		prev = a.current.Name()
		if ex, ok := a.current.(Exiter); ok {
			ex.OnExit(ctx)
		}
		if a.hooks.OnStateLeave != nil {
			a.hooks.OnStateLeave(ctx, &domain.StateEvent{
				EventBase: a.base(domain.EventStateLeave),
				State:     prev,
				Peer:      name,
				Epoch:     a.epoch.Load(),
			})
		}
	}

	a.logger.Info("State transition", "from", prev, "to", name)
	return a.enter(ctx, next, prev)
}

func (a *Automaton) enter(ctx context.Context, next State, prev string) error {
	a.current = next
	a.name.Store(next.Name())
	epoch := a.epoch.Add(1)

	if a.hooks.OnStateEnter != nil {
		a.hooks.OnStateEnter(ctx, &domain.StateEvent{
			EventBase: a.base(domain.EventStateEnter),
			State:     next.Name(),
			Peer:      prev,
			Epoch:     epoch,
		})
	}

	if err := next.OnEnter(ctx); err != nil {
		return fmt.Errorf("enter %s: %w", next.Name(), err)
	}
	return nil
}

// OnEvent forwards the event to the current state.
func (a *Automaton) OnEvent(ctx context.Context, event string) error {
	if a.current == nil {
		return domain.ErrNotStarted
	}
	state := a.current.Name()
	a.logger.Debug("Event received", "state", state, "event", event)

	if a.hooks.OnSignal != nil {
		a.hooks.OnSignal(ctx, &domain.SignalEvent{
			EventBase: a.base(domain.EventSignal),
			State:     state,
			Name:      event,
		})
	}
	return a.current.OnEvent(ctx, event)
}

// Current returns the name of the current state, or "" before Start.
func (a *Automaton) Current() string {
	return a.name.Load().(string)
}

// Epoch counts state entries. It changes on every transition.
func (a *Automaton) Epoch() uint64 {
	return a.epoch.Load()
}

// Logger returns the automaton logger.
func (a *Automaton) Logger() *slog.Logger {
	return a.logger
}

func (a *Automaton) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: a.sessionID,
	}
}
