package wayfinder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/actions"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/aretw0/wayfinder/pkg/navigation"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/position"
	"github.com/aretw0/wayfinder/pkg/session"
)

// DefaultLockKey names the trip lock. One robot guides one user at a time.
const DefaultLockKey = "robot"

// answerFailure is the result scripts yield when the user declines.
const answerFailure = "failure"

// Guide is the high-level entry point: it registers users, asks where they
// want to go and walks them there.
type Guide struct {
	graph       *graph.Graph
	users       ports.UserStore
	actuation   ports.Actuation
	interaction ports.Interaction
	touch       ports.TouchSignal
	catalog     *actions.Catalog

	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	metrics  *observability.Metrics
	store    ports.SessionStore
	locker   ports.DistributedLocker
	lockKey  string
	lockTTL  time.Duration
	navOpts  []navigation.Option
	sessions *session.Manager
}

// Option configures the Guide.
type Option func(*Guide)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guide) {
		g.logger = logger
	}
}

// WithLocker serializes trips across processes sharing the robot.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(g *Guide) {
		g.locker = locker
	}
}

// WithSessionStore persists trip snapshots. The default keeps them in memory.
func WithSessionStore(store ports.SessionStore) Option {
	return func(g *Guide) {
		g.store = store
	}
}

// WithHooks registers observability hooks on every trip.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Guide) {
		g.hooks = hooks
	}
}

// WithMetrics records trips and transitions in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Guide) {
		g.metrics = m
	}
}

// WithTimeout sets how long the robot waits for the user in each state.
func WithTimeout(d time.Duration) Option {
	return WithNavigationOptions(navigation.WithTimeout(d))
}

// WithNavigationOptions passes options to every navigation session.
func WithNavigationOptions(opts ...navigation.Option) Option {
	return func(g *Guide) {
		g.navOpts = append(g.navOpts, opts...)
	}
}

// WithLockKey overrides DefaultLockKey, e.g. to name the robot.
func WithLockKey(key string) Option {
	return func(g *Guide) {
		g.lockKey = key
	}
}

// WithLockTTL sets how long a crashed process keeps the trip lock.
// The lock is renewed for as long as a trip runs.
func WithLockTTL(ttl time.Duration) Option {
	return func(g *Guide) {
		g.lockTTL = ttl
	}
}

// New creates a Guide over the building map and the robot ports.
// A nil catalog selects the built-in one.
func New(
	g *graph.Graph,
	users ports.UserStore,
	actuation ports.Actuation,
	interaction ports.Interaction,
	touch ports.TouchSignal,
	catalog *actions.Catalog,
	opts ...Option,
) (*Guide, error) {
	if g == nil || users == nil || actuation == nil || interaction == nil || touch == nil {
		return nil, errors.New("wayfinder: map, users, actuation, interaction and touch are required")
	}
	if catalog == nil {
		catalog = actions.Default()
	}
	guide := &Guide{
		graph:       g,
		users:       users,
		actuation:   actuation,
		interaction: interaction,
		touch:       touch,
		catalog:     catalog,
		logger:      logging.NewNop(),
		lockKey:     DefaultLockKey,
	}
	for _, opt := range opts {
		opt(guide)
	}
	if guide.store == nil {
		guide.store = memory.NewStore()
	}

	managerOpts := []session.Option{session.WithLogger(guide.logger)}
	if guide.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(guide.locker))
	}
	if guide.lockTTL > 0 {
		managerOpts = append(managerOpts, session.WithLockTTL(guide.lockTTL))
	}
	guide.sessions = session.NewManager(guide.store, managerOpts...)
	return guide, nil
}

// Sessions exposes the trip bookkeeping, e.g. to an HTTP monitor.
func (g *Guide) Sessions() *session.Manager {
	return g.sessions
}

// Map returns the building map.
func (g *Guide) Map() *graph.Graph {
	return g.graph
}

// Outcome describes a finished trip attempt.
type Outcome struct {
	SessionID string
	Path      domain.Path
	Distance  float64
	Result    navigation.Result
	// Called is true when no route existed and the destination was called instead.
	Called bool
}

// Identify returns the stored user, or registers a new one through the
// record_user exchange when the ID is unknown.
func (g *Guide) Identify(ctx context.Context, userID int) (domain.User, error) {
	user, err := g.users.Find(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	g.logger.Info("Unknown user, starting registration", "user", userID)
	result, err := g.performer(domain.User{}).Exchange(ctx, actions.RecordUser)
	if err != nil {
		return domain.User{}, fmt.Errorf("registration: %w", err)
	}
	user, err = ParseRegistration(result)
	if err != nil {
		return domain.User{}, err
	}
	if user.ID, err = g.users.NextID(ctx); err != nil {
		return domain.User{}, err
	}
	if err := g.users.Append(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("registration: %w", err)
	}
	g.logger.Info("User registered", "user", user.ID, "modality", user.Modality, "lang", user.Lang)
	return user, nil
}

// ParseRegistration decodes "<modality> <lang> [level] [name...]".
func ParseRegistration(result string) (domain.User, error) {
	tokens := strings.Fields(result)
	if len(tokens) < 2 {
		return domain.User{}, fmt.Errorf("%w: registration %q", domain.ErrUnrecognizedInteractionResult, result)
	}
	modality, err := domain.ParseModality(tokens[0])
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrUnrecognizedInteractionResult, err)
	}
	user := domain.User{Modality: modality, Lang: tokens[1]}
	rest := tokens[2:]
	if len(rest) > 0 {
		if level, err := strconv.Atoi(rest[0]); err == nil && level >= 0 {
			user.Level = level
			rest = rest[1:]
		}
	}
	user.Name = strings.Join(rest, " ")
	return user, nil
}

// Greet switches the interaction surface to the user's language and greets them by name.
func (g *Guide) Greet(ctx context.Context, user domain.User) error {
	if ls, ok := g.interaction.(ports.LanguageSetter); ok && user.Lang != "" {
		if err := ls.SetLanguage(ctx, user.Lang); err != nil {
			return fmt.Errorf("set language %s: %w", user.Lang, err)
		}
	}
	return g.performer(user).Perform(ctx, actions.Greeting)
}

// AskDestination asks the user where to go.
// It returns domain.ErrTripDeclined when the user refuses the help. A failed
// exchange is returned as is, after the failure notice.
func (g *Guide) AskDestination(ctx context.Context, user domain.User) (string, error) {
	p := g.performer(user)
	result, err := p.Exchange(ctx, actions.AskDestination)
	if err != nil {
		g.logger.Warn("Destination question failed", "user", user.ID, "err", err)
		g.declined(ctx, p)
		return "", err
	}
	if result == answerFailure || result == "" {
		g.logger.Info("Help declined", "user", user.ID)
		g.declined(ctx, p)
		return "", domain.ErrTripDeclined
	}
	return result, nil
}

// Trip guides user from one room to another. Only one trip runs at a time.
//
// When no route fits the user's accessibility level the guide offers to call
// the destination; the returned error is domain.ErrNoRouteFound either way.
func (g *Guide) Trip(ctx context.Context, user domain.User, from, to string) (Outcome, error) {
	for _, room := range []string{from, to} {
		if !g.graph.Has(room) {
			return Outcome{}, fmt.Errorf("%w: %q", domain.ErrUnknownRoom, room)
		}
	}
	if from == to {
		return Outcome{}, fmt.Errorf("%w: %s", domain.ErrAlreadyThere, from)
	}

	var out Outcome
	err := g.sessions.WithLock(ctx, g.lockKey, func(ctx context.Context) error {
		pm := position.New(g.graph)
		out.Path = pm.ComputePath(from, to, user.Level)
		out.Distance = pm.Distance()
		if len(out.Path) == 0 {
			g.logger.Info("No route", "from", from, "to", to, "level", user.Level)
			return g.noRoute(ctx, user, &out)
		}
		g.logger.Info("Route found", "from", from, "to", to, "path", out.Path.String(), "distance", out.Distance)
		return g.walk(ctx, user, pm, &out)
	})
	return out, err
}

func (g *Guide) walk(ctx context.Context, user domain.User, pm *position.Manager, out *Outcome) error {
	hooks := []domain.LifecycleHooks{g.sessions.Hooks(), g.hooks}
	if g.metrics != nil {
		hooks = append(hooks, g.metrics.Hooks())
	}
	opts := append([]navigation.Option{
		navigation.WithLogger(g.logger),
		navigation.WithHooks(domain.MergeHooks(hooks...)),
	}, g.navOpts...)

	trip, err := navigation.New(navigation.Deps{
		Actuation:   g.actuation,
		Interaction: g.interaction,
		Touch:       g.touch,
		Position:    pm,
		Catalog:     g.catalog,
		User:        user,
	}, opts...)
	if err != nil {
		return err
	}
	out.SessionID = trip.ID()

	untrack := g.sessions.Track(ctx, trip)
	defer untrack()
	if g.metrics != nil {
		g.metrics.TripStarted()
	}
	out.Result, err = trip.Run(ctx)
	if g.metrics != nil {
		g.metrics.TripFinished(out.Result.Reason)
	}
	return err
}

func (g *Guide) noRoute(ctx context.Context, user domain.User, out *Outcome) error {
	p := g.performer(user)
	answer, err := p.Exchange(ctx, actions.AskCall)
	if err != nil {
		g.logger.Warn("Call offer failed", "err", err)
		answer = answerFailure
	}
	if answer == answerFailure {
		g.logger.Info("User declined the call")
		g.declined(ctx, p)
		return fmt.Errorf("%w: %w", domain.ErrTripDeclined, domain.ErrNoRouteFound)
	}
	if err := p.Perform(ctx, actions.Call); err != nil {
		return err
	}
	out.Called = true
	return domain.ErrNoRouteFound
}

// Run chains Identify, Greet, AskDestination and Trip for a user standing in from.
func (g *Guide) Run(ctx context.Context, userID int, from string) (Outcome, error) {
	user, err := g.Identify(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if err := g.Greet(ctx, user); err != nil {
		g.logger.Warn("Greeting failed", "user", user.ID, "err", err)
	}
	to, err := g.AskDestination(ctx, user)
	if err != nil {
		return Outcome{}, err
	}
	return g.Trip(ctx, user, from, to)
}

func (g *Guide) declined(ctx context.Context, p *actions.Performer) {
	for _, action := range []string{actions.Disagree, actions.Failure} {
		if err := p.Perform(ctx, action); err != nil {
			g.logger.Warn("Action failed", "action", action, "err", err)
		}
	}
}

func (g *Guide) performer(user domain.User) *actions.Performer {
	return actions.NewPerformer(g.interaction, g.catalog, user.Modality,
		actions.WithVars(map[string]string{"name": user.Name}),
		actions.WithLogger(g.logger),
	)
}
