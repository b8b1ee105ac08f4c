// Package sim provides a simulated robot for demos and tests.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Body implements ports.Actuation with a point robot that moves at the
// commanded velocity until told otherwise.
type Body struct {
	mu        sync.Mutex
	pose      domain.Pose
	velocity  float64
	direction float64
	since     time.Time
	now       func() time.Time

	joints    map[string]float64
	stiffness map[string]float64
	stops     int
}

// NewBody places the robot at pose.
func NewBody(pose domain.Pose) *Body {
	return &Body{
		pose:      pose,
		now:       time.Now,
		joints:    make(map[string]float64),
		stiffness: make(map[string]float64),
	}
}

// integrate advances the pose to now. Callers hold mu.
func (b *Body) integrate() {
	now := b.now()
	if b.velocity != 0 {
		d := b.velocity * now.Sub(b.since).Seconds()
		b.pose.X += d * math.Cos(b.direction)
		b.pose.Y += d * math.Sin(b.direction)
	}
	b.since = now
}

func (b *Body) MoveToward(ctx context.Context, linearVelocity, angle float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.integrate()
	b.velocity = linearVelocity
	b.direction = b.pose.Heading + angle
	return nil
}

func (b *Body) StopMotion(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.integrate()
	b.velocity = 0
	b.stops++
	return nil
}

func (b *Body) GetPosition(ctx context.Context) (domain.Pose, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.integrate()
	return b.pose, nil
}

func (b *Body) SetJointAngles(ctx context.Context, angles map[string]float64, speed float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for j, a := range angles {
		b.joints[j] = a
	}
	return nil
}

func (b *Body) SetStiffness(ctx context.Context, group string, level float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stiffness[group] = level
	return nil
}

// Moving reports whether the base has a non-zero velocity.
func (b *Body) Moving() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.velocity != 0
}

// Stops counts StopMotion calls.
func (b *Body) Stops() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stops
}

// Joint returns the last angle set for joint.
func (b *Body) Joint(name string) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.joints[name]
	return a, ok
}
