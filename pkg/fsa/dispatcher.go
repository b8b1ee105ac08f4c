package fsa

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ErrDispatcherStopped is returned when a command reaches a dispatcher that is no longer running.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

type envelopeKind int

const (
	kindEvent envelopeKind = iota
	kindStart
	kindDo
)

type envelope struct {
	kind    envelopeKind
	name    string
	guarded bool
	epoch   uint64
	task    *Task
	fn      func(*Automaton)
	reply   chan error
}

// Dispatcher serializes every access to an Automaton through one goroutine.
type Dispatcher struct {
	automaton *Automaton
	queue     chan envelope
	stopped   chan struct{}
	logger    *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize sets the event buffer size (default 64).
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.queue = make(chan envelope, n)
	}
}

// NewDispatcher wraps the automaton.
func NewDispatcher(a *Automaton, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		automaton: a,
		queue:     make(chan envelope, 64),
		stopped:   make(chan struct{}),
		logger:    a.Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run consumes the queue until ctx is done. It must be called once.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.stopped)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-d.queue:
			d.handle(ctx, env)
		}
	}
}

// Stopped is closed when Run returns.
func (d *Dispatcher) Stopped() <-chan struct{} {
	return d.stopped
}

func (d *Dispatcher) handle(ctx context.Context, env envelope) {
	switch env.kind {
	case kindStart:
		env.reply <- d.automaton.Start(ctx, env.name)
	case kindDo:
		env.fn(d.automaton)
		env.reply <- nil
	case kindEvent:
		if env.guarded && !d.admit(env) {
			d.drop(ctx, env)
			return
		}
		if err := d.automaton.OnEvent(ctx, env.name); err != nil {
			d.logger.Error("Event handling failed",
				"state", d.automaton.Current(),
				"event", env.name,
				"err", err,
			)
			if h := d.automaton.hooks.OnError; h != nil {
				h(ctx, err)
			}
		}
	}
}

// admit accepts a guarded event only for the state entry that produced it.
func (d *Dispatcher) admit(env envelope) bool {
	if d.automaton.Epoch() != env.epoch {
		return false
	}
	if env.task != nil && !env.task.Claim() {
		return false
	}
	return true
}

func (d *Dispatcher) drop(ctx context.Context, env envelope) {
	d.logger.Debug("Stale event dropped",
		"state", d.automaton.Current(),
		"event", env.name,
		"epoch", env.epoch,
	)
	if h := d.automaton.hooks.OnSignal; h != nil {
		h(ctx, &domain.SignalEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventSignal,
				SessionID: d.automaton.sessionID,
			},
			State:   d.automaton.Current(),
			Name:    env.name,
			Dropped: true,
		})
	}
}

func (d *Dispatcher) send(ctx context.Context, env envelope) bool {
	select {
	case d.queue <- env:
		return true
	case <-ctx.Done():
		return false
	case <-d.stopped:
		return false
	}
}

func (d *Dispatcher) call(ctx context.Context, env envelope) error {
	env.reply = make(chan error, 1)
	if !d.send(ctx, env) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrDispatcherStopped
	}
	select {
	case err := <-env.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopped:
		return ErrDispatcherStopped
	}
}

// Start enters the initial state on the consumer goroutine and waits for it.
func (d *Dispatcher) Start(ctx context.Context, state string) error {
	return d.call(ctx, envelope{kind: kindStart, name: state})
}

// Do runs fn on the consumer goroutine and waits for it.
func (d *Dispatcher) Do(ctx context.Context, fn func(*Automaton)) error {
	return d.call(ctx, envelope{kind: kindDo, fn: fn})
}

// Post queues an external event. It returns false if the event could not be queued.
func (d *Dispatcher) Post(ctx context.Context, event string) bool {
	return d.send(ctx, envelope{kind: kindEvent, name: event})
}

// PostGuarded queues an event that is only delivered while the automaton is
// still in the entry identified by epoch, and only if task (when non-nil) can be claimed.
func (d *Dispatcher) PostGuarded(ctx context.Context, event string, epoch uint64, task *Task) bool {
	return d.send(ctx, envelope{
		kind:    kindEvent,
		name:    event,
		guarded: true,
		epoch:   epoch,
		task:    task,
	})
}

// Epoch returns the epoch of the current state entry.
func (d *Dispatcher) Epoch() uint64 {
	return d.automaton.Epoch()
}

// Automaton returns the wrapped automaton. Only touch it from Do.
func (d *Dispatcher) Automaton() *Automaton {
	return d.automaton
}
