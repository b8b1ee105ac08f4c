package navigation

import (
	"context"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Posture maps joint names to angles in radians.
type Posture map[string]float64

// JointRange is an inclusive angle interval.
type JointRange struct {
	Min, Max float64
}

// Contains reports whether angle lies within the range.
func (r JointRange) Contains(angle float64) bool {
	return r.Min <= angle && angle <= r.Max
}

// JointLimits are the safe ranges of the upper body joints.
var JointLimits = map[string]JointRange{
	"HeadYaw":        {-2.0857, 2.0857},
	"HeadPitch":      {-0.7068, 0.6371},
	"LShoulderPitch": {-2.0857, 2.0857},
	"LShoulderRoll":  {0.0087, 1.5620},
	"LElbowYaw":      {-2.0857, 2.0857},
	"LElbowRoll":     {-1.5620, -0.0087},
	"LWristYaw":      {-1.8239, 1.8239},
	"RShoulderPitch": {-2.0857, 2.0857},
	"RShoulderRoll":  {-1.5620, -0.0087},
	"RElbowYaw":      {-2.0857, 2.0857},
	"RElbowRoll":     {0.0087, 1.5620},
	"RWristYaw":      {-1.8239, 1.8239},
}

// DefaultPosture is the neutral standing posture.
var DefaultPosture = Posture{
	"HeadYaw":        0.0,
	"HeadPitch":      -0.21,
	"LShoulderPitch": 1.55,
	"LShoulderRoll":  0.13,
	"LElbowYaw":      -1.24,
	"LElbowRoll":     -0.52,
	"LWristYaw":      0.01,
	"RShoulderPitch": 1.56,
	"RShoulderRoll":  -0.14,
	"RElbowYaw":      1.22,
	"RElbowRoll":     0.52,
	"RWristYaw":      -0.01,
}

// LeftArmRaised offers the left hand to the user.
var LeftArmRaised = Posture{
	"LShoulderRoll": 1.5620,
	"LElbowYaw":     -1.5,
	"LElbowRoll":    -1.5,
	"LWristYaw":     -0.5,
}

// RightArmRaised offers the right hand to the user.
var RightArmRaised = Posture{
	"RShoulderRoll": -1.5620,
	"RElbowYaw":     1.5,
	"RElbowRoll":    1.5,
	"RWristYaw":     0.5,
}

// ArmRaised returns the raised posture for the side.
func ArmRaised(side domain.Side) Posture {
	if side == domain.Right {
		return RightArmRaised
	}
	return LeftArmRaised
}

// Clamp drops joints that are unknown or outside their limits.
func (p Posture) Clamp() Posture {
	out := make(Posture, len(p))
	for joint, angle := range p {
		if r, ok := JointLimits[joint]; ok && r.Contains(angle) {
			out[joint] = angle
		}
	}
	return out
}

// Perform stiffens the body and applies the safe subset of the posture.
func Perform(ctx context.Context, act ports.Actuation, p Posture, speed float64) error {
	if err := act.SetStiffness(ctx, "Body", 1.0); err != nil {
		return fmt.Errorf("%w: stiffness: %v", domain.ErrActuationFailure, err)
	}
	safe := p.Clamp()
	if len(safe) == 0 {
		return nil
	}
	if err := act.SetJointAngles(ctx, safe, speed); err != nil {
		return fmt.Errorf("%w: joints: %v", domain.ErrActuationFailure, err)
	}
	return nil
}
