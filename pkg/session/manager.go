package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed process can hold the robot.
const DefaultLockTTL = 30 * time.Second

// Trip is a running guided trip. *navigation.Session implements it.
type Trip interface {
	ID() string
	Snapshot() domain.Snapshot
	Touch(ctx context.Context, value float64) bool
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates trip bookkeeping and snapshot persistence.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry
	live  map[string]Trip

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager persisting snapshots to store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]Trip),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// WithLock executes fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The trip ctx may be cancelled by now; the lock must still go.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Track registers a running trip and stores its first snapshot.
// The returned function unregisters it and stores the final snapshot.
func (m *Manager) Track(ctx context.Context, trip Trip) (untrack func()) {
	m.mu.Lock()
	m.live[trip.ID()] = trip
	m.mu.Unlock()
	m.persist(ctx, trip.Snapshot())

	return func() {
		m.mu.Lock()
		delete(m.live, trip.ID())
		m.mu.Unlock()
		m.persist(context.WithoutCancel(ctx), trip.Snapshot())
	}
}

// Live returns a running trip by ID.
func (m *Manager) Live(id string) (Trip, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.live[id]
	return trip, ok
}

// Active returns snapshots of the running trips ordered by session ID.
func (m *Manager) Active() []domain.Snapshot {
	m.mu.Lock()
	trips := make([]Trip, 0, len(m.live))
	for _, t := range m.live {
		trips = append(trips, t)
	}
	m.mu.Unlock()

	snaps := make([]domain.Snapshot, 0, len(trips))
	for _, t := range trips {
		snaps = append(snaps, t.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].SessionID < snaps[j].SessionID })
	return snaps
}

// Hooks persists the snapshot of a tracked trip on every state entry.
func (m *Manager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			if trip, ok := m.Live(e.SessionID); ok {
				m.persist(ctx, trip.Snapshot())
			}
		},
	}
}

func (m *Manager) persist(ctx context.Context, snap domain.Snapshot) {
	if m.store == nil {
		return
	}
	if err := m.Save(ctx, snap); err != nil {
		m.logger.Warn("Failed to persist snapshot", "session", snap.SessionID, "err", err)
	}
}

// Load retrieves a stored snapshot.
func (m *Manager) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.withLocalLock(sessionID, func() error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// Save persists a snapshot.
func (m *Manager) Save(ctx context.Context, snap domain.Snapshot) error {
	return m.withLocalLock(snap.SessionID, func() error {
		return m.store.Save(ctx, snap)
	})
}

// Delete removes a stored snapshot.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.withLocalLock(sessionID, func() error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// withLocalLock serializes store access per session without the distributed locker,
// which is reserved for the trip itself.
func (m *Manager) withLocalLock(key string, fn func() error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()
	return fn()
}
