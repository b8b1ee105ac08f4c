package domain

import "errors"

// ErrNoRouteFound is returned when the planner finds no path usable at the user's accessibility level.
var ErrNoRouteFound = errors.New("no route found")

// ErrUnknownState is returned when the automaton is asked to enter a state that was never registered.
var ErrUnknownState = errors.New("unknown state")

// ErrNotStarted is returned when an event reaches the automaton before Start.
var ErrNotStarted = errors.New("automaton not started")

// ErrActuationFailure wraps errors reported by the robot while moving or posing.
var ErrActuationFailure = errors.New("actuation failure")

// ErrUnrecognizedInteractionResult is returned when the interaction surface answers outside the expected set.
var ErrUnrecognizedInteractionResult = errors.New("unrecognized interaction result")

// ErrInvalidState is returned when the position manager is queried before a path was computed.
var ErrInvalidState = errors.New("invalid state")

// ErrUnknownRoom is returned when a trip names a room missing from the map.
var ErrUnknownRoom = errors.New("unknown room")

// ErrAlreadyThere is returned when the trip starts in the target room.
var ErrAlreadyThere = errors.New("already in target room")

// ErrTripDeclined is returned when the user refuses the guidance or the assistance call.
var ErrTripDeclined = errors.New("trip declined")

// ErrUserNotFound is returned when a user ID cannot be found in the store.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidMap is returned when a map file cannot be parsed.
var ErrInvalidMap = errors.New("invalid map")

// ErrUnknownAction is returned when an action ID has no descriptor.
var ErrUnknownAction = errors.New("unknown action")
