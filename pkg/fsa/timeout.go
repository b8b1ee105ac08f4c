package fsa

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Poster is the guarded entry point used by background callbacks.
// *Dispatcher implements it.
type Poster interface {
	Epoch() uint64
	PostGuarded(ctx context.Context, event string, epoch uint64, task *Task) bool
}

// TimeoutState is embedded by states that give up after a while.
// Arm on entry, Disarm as the first step of OnEvent.
type TimeoutState struct {
	name    string
	timeout time.Duration
	poster  Poster

	mu   sync.Mutex
	task *Task
}

// NewTimeoutState creates the timeout helper for the named state.
// A non-positive timeout disables the timer.
func NewTimeoutState(name string, timeout time.Duration, poster Poster) *TimeoutState {
	return &TimeoutState{
		name:    name,
		timeout: timeout,
		poster:  poster,
	}
}

// Name returns the state name.
func (s *TimeoutState) Name() string {
	return s.name
}

// Timeout returns the configured duration.
func (s *TimeoutState) Timeout() time.Duration {
	return s.timeout
}

// Arm schedules a timeout event for the current entry of the state.
// A previous pending task is cancelled first.
func (s *TimeoutState) Arm(ctx context.Context) {
	if s.timeout <= 0 {
		return
	}
	epoch := s.poster.Epoch()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != nil {
		s.task.Cancel()
	}
	s.task = Schedule(s.timeout, func(t *Task) {
		s.poster.PostGuarded(ctx, domain.EventTimeout, epoch, t)
	})
}

// Disarm cancels the pending timeout, if any.
func (s *TimeoutState) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != nil {
		s.task.Cancel()
		s.task = nil
	}
}

// OnExit disarms the timer when the state is left.
func (s *TimeoutState) OnExit(_ context.Context) {
	s.Disarm()
}
