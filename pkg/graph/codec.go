package graph

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Load reads a map file from disk.
func Load(path string, opts ...Option) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open map: %w", err)
	}
	defer f.Close()

	g, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse decodes the flat text map format.
// Edges must reference rooms declared in the first section.
func Parse(r io.Reader, opts ...Option) (*Graph, error) {
	g := New(opts...)

	scanner := bufio.NewScanner(r)
	inEdges := false
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" {
			if len(g.rooms) > 0 {
				inEdges = true
			}
			continue
		}

		fields := strings.Fields(line)
		if !inEdges {
			if len(fields) != 3 {
				return nil, invalid(lineNo, "room line needs 3 fields, got %d", len(fields))
			}
			x, errX := strconv.ParseFloat(fields[1], 64)
			y, errY := strconv.ParseFloat(fields[2], 64)
			if errX != nil || errY != nil || !finite(x) || !finite(y) {
				return nil, invalid(lineNo, "bad coordinates %q %q", fields[1], fields[2])
			}
			g.AddNode(fields[0], x, y)
			continue
		}

		if len(fields) != 4 {
			return nil, invalid(lineNo, "edge line needs 4 fields, got %d", len(fields))
		}
		if !g.Has(fields[0]) || !g.Has(fields[1]) {
			return nil, invalid(lineNo, "edge %s-%s references an undeclared room", fields[0], fields[1])
		}
		distance, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || !finite(distance) || distance < 0 {
			return nil, invalid(lineNo, "bad distance %q", fields[2])
		}
		access, err := strconv.Atoi(fields[3])
		if err != nil || access < 0 {
			return nil, invalid(lineNo, "bad accessibility %q", fields[3])
		}
		g.AddEdge(fields[0], fields[1], distance, access)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	return g, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func invalid(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", domain.ErrInvalidMap, line, fmt.Sprintf(format, args...))
}

// Write encodes the graph in the flat text map format.
func Write(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)
	for _, r := range g.Rooms() {
		fmt.Fprintf(bw, "%s %s %s\n", r.Name, formatFloat(r.X), formatFloat(r.Y))
	}
	bw.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "%s %s %s %d\n", e.From, e.To, formatFloat(e.Distance), e.Accessibility)
	}
	return bw.Flush()
}

// Save writes the graph to a file, replacing it.
func Save(path string, g *Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create map: %w", err)
	}
	if err := Write(f, g); err != nil {
		f.Close()
		return fmt.Errorf("failed to write map: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
