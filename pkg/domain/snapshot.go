package domain

import "time"

// Snapshot is the observable view of a guided trip.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	UserID    int       `json:"user_id"`
	State     string    `json:"state"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Path      []string  `json:"path"`
	Cursor    int       `json:"cursor"`
	Side      Side      `json:"side"`
	Done      bool      `json:"done"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Target returns the room the robot is heading to, or "" when the trip is over.
func (s Snapshot) Target() string {
	if s.Cursor >= 0 && s.Cursor < len(s.Path) {
		return s.Path[s.Cursor]
	}
	return ""
}
