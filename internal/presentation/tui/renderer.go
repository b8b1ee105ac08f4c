package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}

// RouteMarkdown describes a planned route as a markdown report.
func RouteMarkdown(from, to string, level int, total float64, path domain.Path) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Route %s → %s\n\n", from, to)
	if len(path) == 0 {
		fmt.Fprintf(&sb, "No route usable at accessibility level **%d**.\n", level)
		return sb.String()
	}

	fmt.Fprintf(&sb, "Accessibility level **%d**, total distance **%g m**, %d stops.\n\n", level, total, len(path))
	sb.WriteString("| # | Room | x | y |\n|---|---|---|---|\n")
	for i, r := range path {
		fmt.Fprintf(&sb, "| %d | %s | %g | %g |\n", i, r.Name, r.X, r.Y)
	}
	return sb.String()
}

// RenderRoute renders the route report, falling back to plain markdown when
// render is nil.
func RenderRoute(render func(string) (string, error), from, to string, level int, total float64, path domain.Path) (string, error) {
	md := RouteMarkdown(from, to, level, total, path)
	if render == nil {
		return md, nil
	}
	return render(md)
}
