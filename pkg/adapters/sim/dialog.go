package sim

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Utterance is something the dialog said or showed.
type Utterance struct {
	Kind string // "say", "icon" or "script"
	Text string
}

// Dialog implements ports.Interaction with queued answers per script.
// A script without a queued answer times out, or blocks until ctx is done
// when Block is set.
type Dialog struct {
	Block bool

	mu      sync.Mutex
	answers map[string][]string
	log     []Utterance
	lang    string
	logger  *slog.Logger
}

// NewDialog creates a dialog with no queued answers.
func NewDialog(logger *slog.Logger) *Dialog {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dialog{answers: make(map[string][]string), logger: logger}
}

// Answer queues answers for script, consumed in order.
func (d *Dialog) Answer(script string, answers ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.answers[script] = append(d.answers[script], answers...)
}

func (d *Dialog) RunScriptedExchange(ctx context.Context, scriptID string) (string, error) {
	d.mu.Lock()
	d.log = append(d.log, Utterance{Kind: "script", Text: scriptID})
	queue := d.answers[scriptID]
	if len(queue) > 0 {
		answer := queue[0]
		d.answers[scriptID] = queue[1:]
		d.mu.Unlock()
		d.logger.Info("Exchange", "script", scriptID, "answer", answer)
		return answer, nil
	}
	block := d.Block
	d.mu.Unlock()

	if !block {
		return "", ports.ErrInteractionTimeout
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func (d *Dialog) Say(ctx context.Context, text string) error {
	d.record("say", text)
	d.logger.Info("Say", "text", text)
	return nil
}

func (d *Dialog) ShowIcon(ctx context.Context, id string) error {
	d.record("icon", id)
	d.logger.Info("Icon", "id", id)
	return nil
}

// SetLanguage records the language.
func (d *Dialog) SetLanguage(ctx context.Context, lang string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lang = lang
	return nil
}

// Language returns the last language set.
func (d *Dialog) Language() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lang
}

// Log returns everything said, shown or asked so far.
func (d *Dialog) Log() []Utterance {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Utterance(nil), d.log...)
}

func (d *Dialog) record(kind, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log = append(d.log, Utterance{Kind: kind, Text: text})
}
