package domain

// Names of the navigation automaton states.
const (
	StateSteady   = "steady"
	StateMoving   = "moving"
	StateAsk      = "ask"
	StateHoldHand = "hold_hand"
	StateQuit     = "quit"
)

// Names of the events understood by the navigation automaton.
const (
	EventLimbTouched    = "limb_touched"
	EventLimbReleased   = "limb_released"
	EventGoalReached    = "goal_reached"
	EventYes            = "yes"
	EventNo             = "no"
	EventTimeout        = "timeout"
	EventMovementFailed = "movement_failed"
	// EventAbort is posted when the host cancels the trip.
	EventAbort = "abort"
)

// TouchEvent normalizes a raw touch sensor value.
func TouchEvent(value float64) string {
	if value != 0 {
		return EventLimbTouched
	}
	return EventLimbReleased
}
