package ports

import (
	"context"
	"errors"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Actuation drives the robot body. Calls are point-to-point commands with no rollback.
type Actuation interface {
	// MoveToward sets the base velocity (m/s) along angle (radians, relative to the heading).
	MoveToward(ctx context.Context, linearVelocity, angle float64) error
	// StopMotion halts the base.
	StopMotion(ctx context.Context) error
	// GetPosition returns the robot pose in the map frame.
	GetPosition(ctx context.Context) (domain.Pose, error)
	// SetJointAngles moves the named joints (radians) at a fraction of max speed.
	SetJointAngles(ctx context.Context, angles map[string]float64, speed float64) error
	// SetStiffness sets the stiffness of a joint group ("Body", "LArm", ...).
	SetStiffness(ctx context.Context, group string, level float64) error
}

// ErrInteractionTimeout is returned by RunScriptedExchange when the user did not answer in time.
var ErrInteractionTimeout = errors.New("interaction timed out")

// Interaction is the dialogue and display surface.
type Interaction interface {
	// RunScriptedExchange plays a script and blocks until it yields a categorical result.
	RunScriptedExchange(ctx context.Context, scriptID string) (string, error)
	// Say speaks the text.
	Say(ctx context.Context, text string) error
	// ShowIcon displays an icon on the tablet.
	ShowIcon(ctx context.Context, id string) error
}

// LanguageSetter is implemented by interaction surfaces with language profiles.
type LanguageSetter interface {
	SetLanguage(ctx context.Context, lang string) error
}

// Unsubscribe releases a touch subscription. It is safe to call more than once.
type Unsubscribe func()

// TouchSignal delivers raw touch sensor values by event name (e.g. "HandLeftBackTouched").
type TouchSignal interface {
	Subscribe(ctx context.Context, event string, fn func(value float64)) (Unsubscribe, error)
}
