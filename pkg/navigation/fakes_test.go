package navigation_test

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// fakeBody integrates each MoveToward command over one step.
type fakeBody struct {
	mu       sync.Mutex
	pose     domain.Pose
	step     time.Duration
	stall    bool
	failMove error

	moves   int
	stops   int
	joints  []map[string]float64
	stiffed int
}

func (b *fakeBody) MoveToward(ctx context.Context, v, angle float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves++
	if b.failMove != nil {
		return b.failMove
	}
	if b.stall {
		return nil
	}
	d := v * b.step.Seconds()
	dir := b.pose.Heading + angle
	b.pose.X += d * math.Cos(dir)
	b.pose.Y += d * math.Sin(dir)
	return nil
}

func (b *fakeBody) StopMotion(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stops++
	return nil
}

func (b *fakeBody) GetPosition(ctx context.Context) (domain.Pose, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pose, nil
}

func (b *fakeBody) SetJointAngles(ctx context.Context, angles map[string]float64, speed float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.joints = append(b.joints, angles)
	return nil
}

func (b *fakeBody) SetStiffness(ctx context.Context, group string, level float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stiffed++
	return nil
}

func (b *fakeBody) Stops() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stops
}

func (b *fakeBody) Moves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.moves
}

func (b *fakeBody) LastJoints() map[string]float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.joints) == 0 {
		return nil
	}
	return b.joints[len(b.joints)-1]
}

// fakeDialog answers scripts from a table and blocks on the others.
type fakeDialog struct {
	mu      sync.Mutex
	answers map[string]string
	said    []string
	icons   []string
}

func (d *fakeDialog) RunScriptedExchange(ctx context.Context, scriptID string) (string, error) {
	d.mu.Lock()
	answer, ok := d.answers[scriptID]
	d.mu.Unlock()
	if ok {
		return answer, nil
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func (d *fakeDialog) Say(ctx context.Context, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.said = append(d.said, text)
	return nil
}

func (d *fakeDialog) ShowIcon(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.icons = append(d.icons, id)
	return nil
}

func (d *fakeDialog) Said() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.said...)
}

// fakeTouch keeps the last subscription.
type fakeTouch struct {
	mu           sync.Mutex
	event        string
	fn           func(float64)
	unsubscribed int
}

func (t *fakeTouch) Subscribe(ctx context.Context, event string, fn func(float64)) (ports.Unsubscribe, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.event = event
	t.fn = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.unsubscribed++
		t.fn = nil
	}, nil
}

func (t *fakeTouch) Fire(value float64) bool {
	t.mu.Lock()
	fn := t.fn
	t.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(value)
	return true
}

func (t *fakeTouch) Unsubscribed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unsubscribed
}

// stateLog records state entries through the hooks.
type stateLog struct {
	mu     sync.Mutex
	states []string
}

func (l *stateLog) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.states = append(l.states, e.State)
		},
	}
}

func (l *stateLog) States() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.states...)
}
