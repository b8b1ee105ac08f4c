package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/wayfinder/pkg/ports"
)

// Console is a terminal stand-in for the robot tablet.
//
// Exchanges print the script ID and read the answer from the next input line
// typed after the prompt.
// The words "touch" and "release" are never taken as answers: they go to the
// touch handler, so the user can hold or let go of the hand at any time.
type Console struct {
	out   io.Writer
	lines chan string

	mu    sync.Mutex
	touch func(value float64)
	lang  string
}

// NewConsole starts reading in. Reading stops at EOF.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{out: out, lines: make(chan string, 8)}
	go c.read(in)
	return c
}

// OnTouch sets the handler for "touch" (1) and "release" (0) lines.
func (c *Console) OnTouch(fn func(value float64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch = fn
}

func (c *Console) read(in io.Reader) {
	defer close(c.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "touch", "t":
			c.fireTouch(1)
		case "release", "r":
			c.fireTouch(0)
		default:
			c.lines <- line
		}
	}
}

func (c *Console) fireTouch(value float64) {
	c.mu.Lock()
	fn := c.touch
	c.mu.Unlock()
	if fn == nil {
		c.printf("(nobody is listening to the hand)\n")
		return
	}
	fn(value)
}

// RunScriptedExchange prompts for one answer. Lines typed before the prompt
// are discarded so they cannot answer a question nobody asked yet.
func (c *Console) RunScriptedExchange(ctx context.Context, scriptID string) (string, error) {
	c.drain()
	c.printf("[%s] > ", scriptID)
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", ports.ErrInteractionTimeout
		}
		return line, nil
	case <-ctx.Done():
		c.printf("\n")
		return "", ctx.Err()
	}
}

func (c *Console) drain() {
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return
			}
			c.printf("(ignored %q: no question pending)\n", line)
		default:
			return
		}
	}
}

func (c *Console) Say(ctx context.Context, text string) error {
	c.printf("robot: %s\n", text)
	return nil
}

func (c *Console) ShowIcon(ctx context.Context, id string) error {
	c.printf("tablet: [%s]\n", id)
	return nil
}

func (c *Console) SetLanguage(ctx context.Context, lang string) error {
	c.mu.Lock()
	c.lang = lang
	c.mu.Unlock()
	c.printf("tablet: language %s\n", lang)
	return nil
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
