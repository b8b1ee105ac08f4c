package domain

import "strings"

// Room is a named point of the building map.
// Coordinates are only used for segment geometry and for picking the guiding arm.
type Room struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Edge connects two rooms.
// Accessibility is an ordinal of the mobility required to use it (0 = step-free).
type Edge struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Distance      float64 `json:"distance"`
	Accessibility int     `json:"accessibility"`
}

// Usable reports whether a user with the given accessibility level may traverse the edge.
// The level is an inclusive ceiling.
func (e Edge) Usable(level int) bool {
	return e.Accessibility <= level
}

// Pose is the robot position in the map frame. Heading is in radians.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

// Path is an ordered sequence of rooms from start to destination.
// An empty path means no route was found.
type Path []Room

// Names returns the room names of the path.
func (p Path) Names() []string {
	names := make([]string, len(p))
	for i, r := range p {
		names[i] = r.Name
	}
	return names
}

// String renders the path as "A -> B -> C".
func (p Path) String() string {
	return strings.Join(p.Names(), " -> ")
}
