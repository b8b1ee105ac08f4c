// Package cli wires configuration into a ready-to-run guide for the commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/internal/config"
	httpAdapter "github.com/aretw0/wayfinder/pkg/adapters/http"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	mqttAdapter "github.com/aretw0/wayfinder/pkg/adapters/mqtt"
	redisAdapter "github.com/aretw0/wayfinder/pkg/adapters/redis"
	"github.com/aretw0/wayfinder/pkg/adapters/robot"
	"github.com/aretw0/wayfinder/pkg/adapters/sim"
	"github.com/aretw0/wayfinder/pkg/adapters/websocket"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/aretw0/wayfinder/pkg/navigation"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/users"
)

// App is a guide with every backend selected by the configuration.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Map     *graph.Graph
	Users   ports.UserStore
	Guide   *wayfinder.Guide
	Metrics *observability.Metrics
	Streams *httpAdapter.StreamManager
	// Touch publishes on the configured touch transport.
	Touch httpAdapter.TouchPublisher
	// Console is set when no interaction service is configured.
	Console *Console

	closers []func() error
}

// IO is the terminal used by the console interaction.
type IO struct {
	In  io.Reader
	Out io.Writer
}

// Build opens every backend. home is the room the simulated robot stands in.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, term IO, home string) (app *App, err error) {
	app = &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		Streams: httpAdapter.NewStreamManager(),
	}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	if app.Map, err = graph.Load(cfg.MapPath); err != nil {
		return app, err
	}
	store, closeUsers, err := OpenUsers(cfg)
	if err != nil {
		return app, err
	}
	app.Users = store
	app.closers = append(app.closers, closeUsers)

	catalog, err := cfg.Catalog()
	if err != nil {
		return app, err
	}

	actuation := app.actuation(home)
	interaction, err := app.interaction(ctx, term)
	if err != nil {
		return app, err
	}
	touch, err := app.touch()
	if err != nil {
		return app, err
	}
	if app.Console != nil {
		app.Console.OnTouch(func(value float64) {
			for _, side := range []domain.Side{domain.Left, domain.Right} {
				if err := app.Touch("Hand"+string(side)+"BackTouched", value); err != nil {
					logger.Warn("Touch publish failed", "err", err)
				}
			}
		})
	}

	opts := []wayfinder.Option{
		wayfinder.WithLogger(logger),
		wayfinder.WithMetrics(app.Metrics),
		wayfinder.WithHooks(domain.MergeHooks(observability.LogHooks(logger), app.Streams.Hooks())),
		wayfinder.WithTimeout(cfg.Session.Timeout),
		wayfinder.WithNavigationOptions(
			navigation.WithStepInterval(cfg.Robot.StepInterval),
			navigation.WithLinearVelocity(cfg.Robot.LinearVelocity),
			navigation.WithArrivalTolerance(cfg.Robot.ArrivalTolerance),
		),
	}
	if cfg.Session.Store == "redis" {
		rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
			redisAdapter.WithTTL(cfg.Redis.TTL),
		)
		app.closers = append(app.closers, rs.Close)
		if err := rs.Client().Ping(ctx).Err(); err != nil {
			return app, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		opts = append(opts,
			wayfinder.WithSessionStore(rs),
			wayfinder.WithLocker(redisAdapter.NewLocker(rs.Client(), cfg.Redis.Prefix)),
			wayfinder.WithLockTTL(cfg.Redis.LockTTL),
		)
	}

	app.Guide, err = wayfinder.New(app.Map, app.Users, actuation, interaction, touch, catalog, opts...)
	return app, err
}

// OpenUsers opens the configured user registry.
func OpenUsers(cfg config.Config) (ports.UserStore, func() error, error) {
	if cfg.UsersBackend == "sqlite" {
		db, err := users.OpenSQLite(cfg.UsersPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return users.NewFileStore(cfg.UsersPath), func() error { return nil }, nil
}

func (a *App) actuation(home string) ports.Actuation {
	if a.Config.Robot.URL != "" {
		a.Logger.Info("Using robot API", "url", a.Config.Robot.URL)
		return robot.New(a.Config.Robot.URL, robot.WithTimeout(a.Config.Robot.RequestTimeout))
	}
	var pose domain.Pose
	if room, ok := a.Map.Room(home); ok {
		pose.X, pose.Y = room.X, room.Y
	}
	a.Logger.Info("Using simulated robot", "x", pose.X, "y", pose.Y)
	return sim.NewBody(pose)
}

func (a *App) interaction(ctx context.Context, term IO) (ports.Interaction, error) {
	if a.Config.Interaction.URL != "" {
		ws, err := websocket.Dial(ctx, a.Config.Interaction.URL, nil,
			websocket.WithLogger(a.Logger),
			websocket.WithExchangeTimeout(a.Config.Interaction.ExchangeTimeout),
		)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ws.Close)
		return ws, nil
	}
	a.Console = NewConsole(term.In, term.Out)
	return a.Console, nil
}

func (a *App) touch() (ports.TouchSignal, error) {
	if a.Config.Touch.Backend == "mqtt" {
		m := a.Config.Touch.MQTT
		client, err := mqttAdapter.Connect(mqttAdapter.Config{
			Broker:      m.Broker,
			Port:        m.Port,
			ClientID:    m.ClientID,
			TopicPrefix: m.TopicPrefix,
		})
		if err != nil {
			return nil, err
		}
		ts := mqttAdapter.NewTouchSignal(client,
			mqttAdapter.WithTopicPrefix(m.TopicPrefix),
			mqttAdapter.WithLogger(a.Logger),
		)
		a.closers = append(a.closers, func() error { ts.Close(); return nil })
		a.Touch = ts.Publish
		return ts, nil
	}

	hub := memory.NewTouchHub()
	a.Touch = func(event string, value float64) error {
		hub.Publish(event, value)
		return nil
	}
	return hub, nil
}

// Handler serves the monitoring API.
func (a *App) Handler() http.Handler {
	return httpAdapter.NewHandler(&httpAdapter.Server{
		Sessions: a.Guide.Sessions(),
		Map:      a.Map,
		Touch:    a.Touch,
		Metrics:  a.Metrics.Handler(),
		Version:  wayfinder.Version,
		Logger:   a.Logger,
		Streams:  a.Streams,
	})
}

// Close releases the backends in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
