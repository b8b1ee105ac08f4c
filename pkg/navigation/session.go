package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/actions"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/fsa"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/position"
	"github.com/google/uuid"
)

const (
	DefaultTimeout           = 10 * time.Second
	DefaultStepInterval      = 100 * time.Millisecond
	DefaultLinearVelocity    = 0.3
	DefaultArrivalTolerance  = 0.15
	DefaultAbortGracePeriod  = 5 * time.Second
	defaultRaiseSpeed        = 0.25
	defaultPostureResetSpeed = 1.0
)

// Deps are the collaborators of a guided trip.
type Deps struct {
	Actuation   ports.Actuation
	Interaction ports.Interaction
	Touch       ports.TouchSignal
	// Position must hold a computed, non-empty path.
	Position *position.Manager
	Catalog  *actions.Catalog
	User     domain.User
}

// Result tells how a trip ended.
type Result struct {
	// Reached is true when the destination was reached.
	Reached bool
	// Reason is the event that led to Quit.
	Reason string
}

// Session is one guided trip: the navigation automaton and everything it drives.
type Session struct {
	id   string
	deps Deps
	side domain.Side

	timeout   time.Duration
	step      time.Duration
	velocity  float64
	tolerance float64
	grace     time.Duration
	sideSet   bool

	logger *slog.Logger
	hooks  domain.LifecycleHooks

	automaton  *fsa.Automaton
	dispatcher *fsa.Dispatcher
	performer  *actions.Performer

	// reason is written on the dispatcher goroutine before Quit closes done.
	reason string

	unsubOnce   sync.Once
	unsubscribe ports.Unsubscribe
	doneOnce    sync.Once
	done        chan struct{}
	runOnce     sync.Once
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets how long Steady, Ask and HoldHand wait for the user.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithSide forces the guiding arm instead of deriving it from the path.
func WithSide(side domain.Side) Option {
	return func(s *Session) {
		s.side = side
		s.sideSet = true
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithStepInterval sets the length of one movement increment.
// A release stops the robot within about one interval.
func WithStepInterval(d time.Duration) Option {
	return func(s *Session) {
		s.step = d
	}
}

// WithLinearVelocity sets the cruise speed in m/s.
func WithLinearVelocity(v float64) Option {
	return func(s *Session) {
		s.velocity = v
	}
}

// WithArrivalTolerance sets the distance under which a waypoint counts as reached.
func WithArrivalTolerance(d float64) Option {
	return func(s *Session) {
		s.tolerance = d
	}
}

// WithAbortGracePeriod bounds how long Run waits for Quit after its context is cancelled.
func WithAbortGracePeriod(d time.Duration) Option {
	return func(s *Session) {
		s.grace = d
	}
}

// New builds the navigation automaton for a trip.
// It returns domain.ErrNoRouteFound if the position manager holds no path.
func New(deps Deps, opts ...Option) (*Session, error) {
	if deps.Actuation == nil || deps.Interaction == nil || deps.Touch == nil || deps.Position == nil {
		return nil, errors.New("navigation: actuation, interaction, touch and position are required")
	}
	if deps.Catalog == nil {
		deps.Catalog = actions.Default()
	}
	path := deps.Position.Path()
	if len(path) == 0 {
		return nil, domain.ErrNoRouteFound
	}

	s := &Session{
		id:        uuid.NewString(),
		deps:      deps,
		timeout:   DefaultTimeout,
		step:      DefaultStepInterval,
		velocity:  DefaultLinearVelocity,
		tolerance: DefaultArrivalTolerance,
		grace:     DefaultAbortGracePeriod,
		logger:    logging.NewNop(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.sideSet {
		s.side = domain.SideFor(path)
	}
	s.logger = s.logger.With("session", s.id)

	s.performer = actions.NewPerformer(deps.Interaction, deps.Catalog, deps.User.Modality,
		actions.WithVars(map[string]string{"name": deps.User.Name}),
		actions.WithLogger(s.logger),
	)
	s.automaton = fsa.New(
		fsa.WithLogger(s.logger),
		fsa.WithHooks(s.hooks),
		fsa.WithSessionID(s.id),
	)
	s.dispatcher = fsa.NewDispatcher(s.automaton)

	s.automaton.AddState(&steadyState{TimeoutState: fsa.NewTimeoutState(domain.StateSteady, s.timeout, s.dispatcher), s: s})
	s.automaton.AddState(&movingState{s: s})
	s.automaton.AddState(&askState{TimeoutState: fsa.NewTimeoutState(domain.StateAsk, s.timeout, s.dispatcher), s: s})
	s.automaton.AddState(&holdHandState{TimeoutState: fsa.NewTimeoutState(domain.StateHoldHand, s.timeout, s.dispatcher), s: s})
	s.automaton.AddState(&quitState{s: s})

	return s, nil
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Side returns the guiding arm.
func (s *Session) Side() domain.Side {
	return s.side
}

// TouchEventName is the sensor event the session listens to.
func (s *Session) TouchEventName() string {
	return "Hand" + string(s.side) + "BackTouched"
}

// Run starts the trip in Steady and blocks until Quit.
// Cancelling ctx aborts the trip: the automaton still goes through Quit
// (posture reset, touch released) within the abort grace period.
func (s *Session) Run(ctx context.Context) (Result, error) {
	started := false
	s.runOnce.Do(func() { started = true })
	if !started {
		return Result{}, errors.New("navigation: session already run")
	}

	// States act on runCtx so that host cancellation does not cut the Quit sequence short.
	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()

	unsubscribe, err := s.deps.Touch.Subscribe(runCtx, s.TouchEventName(), func(value float64) {
		s.dispatcher.Post(runCtx, domain.TouchEvent(value))
	})
	if err != nil {
		return Result{}, fmt.Errorf("subscribe %s: %w", s.TouchEventName(), err)
	}
	s.unsubscribe = unsubscribe
	defer s.releaseTouch()

	stopped := make(chan struct{})
	go func() {
		_ = s.dispatcher.Run(runCtx)
		close(stopped)
	}()
	defer func() {
		stop()
		<-stopped
	}()

	s.logger.Info("Trip started",
		"user", s.deps.User.ID,
		"path", s.deps.Position.Path().String(),
		"side", s.side,
	)
	if err := s.dispatcher.Start(runCtx, domain.StateSteady); err != nil {
		return Result{}, fmt.Errorf("start: %w", err)
	}

	select {
	case <-s.done:
		return s.result(), nil
	case <-ctx.Done():
	}

	s.logger.Warn("Trip aborted by host", "state", s.automaton.Current())
	s.dispatcher.Post(runCtx, domain.EventAbort)
	select {
	case <-s.done:
	case <-time.After(s.grace):
		s.logger.Error("Quit not reached after abort", "state", s.automaton.Current())
	}
	return s.result(), ctx.Err()
}

// Touch injects a raw touch sensor value.
func (s *Session) Touch(ctx context.Context, value float64) bool {
	return s.dispatcher.Post(ctx, domain.TouchEvent(value))
}

// Done is closed when the automaton enters Quit.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// State returns the current state name.
func (s *Session) State() string {
	return s.automaton.Current()
}

// Snapshot returns the observable view of the trip.
func (s *Session) Snapshot() domain.Snapshot {
	path := s.deps.Position.Path()
	snap := domain.Snapshot{
		SessionID: s.id,
		UserID:    s.deps.User.ID,
		State:     s.automaton.Current(),
		Path:      path.Names(),
		Cursor:    s.deps.Position.Cursor(),
		Side:      s.side,
		UpdatedAt: time.Now().UTC(),
	}
	if len(path) > 0 {
		snap.From = path[0].Name
		snap.To = path[len(path)-1].Name
	}
	if snap.State == domain.StateQuit {
		snap.Done = true
	}
	return snap
}

func (s *Session) result() Result {
	select {
	case <-s.done:
		return Result{Reached: s.reason == domain.EventGoalReached, Reason: s.reason}
	default:
		return Result{Reason: domain.EventAbort}
	}
}

// quit records why the trip ends and enters Quit.
func (s *Session) quit(ctx context.Context, reason string) error {
	s.reason = reason
	return s.automaton.ChangeState(ctx, domain.StateQuit)
}

func (s *Session) releaseTouch() {
	s.unsubOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

func (s *Session) posture(ctx context.Context, p Posture, speed float64) {
	if err := Perform(ctx, s.deps.Actuation, p, speed); err != nil {
		s.logger.Warn("Posture failed", "err", err)
	}
}

func (s *Session) perform(ctx context.Context, action string) {
	if err := s.performer.Perform(ctx, action); err != nil {
		s.logger.Warn("Action failed", "action", action, "err", err)
	}
}

func (s *Session) segment(ctx context.Context, target string, outcome domain.SegmentOutcome, took time.Duration) {
	s.logger.Debug("Segment finished", "target", target, "outcome", outcome, "took", took)
	if s.hooks.OnSegment != nil {
		s.hooks.OnSegment(ctx, &domain.SegmentEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventSegment,
				SessionID: s.id,
			},
			Target:   target,
			Outcome:  outcome,
			Duration: took,
		})
	}
}
