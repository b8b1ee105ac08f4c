package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// RouteOverlay highlights a trip on the map.
type RouteOverlay struct {
	Path    []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of the building map.
// Edges are labelled with their distance; edges that need an accessibility
// level above zero are dotted and carry the level.
// It also applies overlay styles (route/current) if provided.
func GenerateMermaid(rooms []domain.Room, edges []domain.Edge, directed bool, overlay *RouteOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, room := range rooms {
		fmt.Fprintf(&sb, "    %s(\"%s <br/> (%g, %g)\")\n", sanitizeMermaidID(room.Name), room.Name, room.X, room.Y)
	}

	for _, e := range edges {
		from, to := sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)
		label := fmt.Sprintf("%g m", e.Distance)
		if e.Accessibility > 0 {
			label = fmt.Sprintf("%g m, level %d", e.Distance, e.Accessibility)
		}

		var arrow string
		switch {
		case directed && e.Accessibility > 0:
			arrow = fmt.Sprintf("-. \"%s\" .->", label)
		case directed:
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
		case e.Accessibility > 0:
			arrow = fmt.Sprintf("-. \"%s\" .-", label)
		default:
			arrow = fmt.Sprintf("-- \"%s\" ---", label)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", from, arrow, to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef route fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Path {
			id := sanitizeMermaidID(name)
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s route;\n", id)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
