package domain

import "fmt"

// Modality is the interaction channel a user prefers.
type Modality string

const (
	// ModalityVoice is for users who rely on speech (persisted as "blind").
	ModalityVoice Modality = "blind"
	// ModalityVisual is for users who rely on the tablet and touch (persisted as "deaf").
	ModalityVisual Modality = "deaf"
)

// ParseModality maps a persisted or spoken token to a Modality.
func ParseModality(s string) (Modality, error) {
	switch s {
	case "blind", "voice", "a", "A":
		return ModalityVoice, nil
	case "deaf", "visual", "b", "B":
		return ModalityVisual, nil
	default:
		return "", fmt.Errorf("invalid modality %q", s)
	}
}

// User is the person being guided.
type User struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Modality Modality `json:"modality"`
	Lang     string   `json:"lang"`
	// Level is the accessibility ceiling used when planning routes.
	Level int `json:"level"`
}

func (u User) String() string {
	return fmt.Sprintf("%d, %s, %s, %s", u.ID, u.Name, u.Modality, u.Lang)
}

// Side identifies which arm the robot offers to the user.
type Side string

const (
	Left  Side = "Left"
	Right Side = "Right"
)

// SideFor picks the guiding arm from the first room of the path:
// Right when it lies at negative x, Left otherwise.
func SideFor(path Path) Side {
	if len(path) > 0 && path[0].X < 0 {
		return Right
	}
	return Left
}
