package navigation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// travel drives the robot through the remaining waypoints.
// It returns the event to report, or "" when interrupted.
func (s *Session) travel(ctx context.Context) string {
	target, err := s.deps.Position.CurrentTarget()
	for err == nil && target != nil {
		start := time.Now()
		if err = s.moveTo(ctx, *target); err != nil {
			break
		}
		s.segment(ctx, target.Name, domain.SegmentReached, time.Since(start))
		target, err = s.deps.Position.NextTarget()
	}

	switch {
	case ctx.Err() != nil:
		if target != nil {
			s.segment(ctx, target.Name, domain.SegmentInterrupted, 0)
		}
		return ""
	case err != nil:
		name := ""
		if target != nil {
			name = target.Name
			s.segment(ctx, name, domain.SegmentFailed, 0)
		}
		s.logger.Error("Movement failed", "target", name, "err", err)
		return domain.EventMovementFailed
	default:
		return domain.EventGoalReached
	}
}

// moveTo closes in on the room in increments of one step interval,
// so a cancelled ctx stops the approach within one step.
func (s *Session) moveTo(ctx context.Context, room domain.Room) error {
	ticker := time.NewTicker(s.step)
	defer ticker.Stop()

	for {
		pose, err := s.deps.Actuation.GetPosition(ctx)
		if err != nil {
			return fmt.Errorf("%w: position: %v", domain.ErrActuationFailure, err)
		}
		dx, dy := room.X-pose.X, room.Y-pose.Y
		dist := math.Hypot(dx, dy)
		if dist <= s.tolerance {
			return nil
		}

		angle := normalizeAngle(math.Atan2(dy, dx) - pose.Heading)
		velocity := math.Min(s.velocity, dist/s.step.Seconds())
		if err := s.deps.Actuation.MoveToward(ctx, velocity, angle); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: move toward %s: %v", domain.ErrActuationFailure, room.Name, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// normalizeAngle maps a to (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	switch {
	case a > math.Pi:
		a -= 2 * math.Pi
	case a <= -math.Pi:
		a += 2 * math.Pi
	}
	return a
}
