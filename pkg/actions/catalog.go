// Package actions maps action IDs to data-driven descriptors and performs them
// on an interaction surface.
package actions

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Action IDs used by the guide.
const (
	Walking        = "walking"
	Goal           = "goal"
	AskCancel      = "ask_cancel"
	AskCall        = "ask_call"
	Call           = "call"
	Disagree       = "disagree"
	Failure        = "failure"
	OfferHelp      = "offer_help"
	AskDestination = "ask_destination"
	RecordUser     = "record_user"
	Greeting       = "custom_greeting"
)

// HoldHand returns the instruction action for the given arm.
func HoldHand(side domain.Side) string {
	if side == domain.Right {
		return "right_walk_hold_hand"
	}
	return "left_walk_hold_hand"
}

// Descriptor tells how to render an action for one modality.
// An empty Modality applies to every user.
type Descriptor struct {
	Action   string          `mapstructure:"action" yaml:"action"`
	Modality domain.Modality `mapstructure:"modality" yaml:"modality,omitempty"`
	Script   string          `mapstructure:"script" yaml:"script,omitempty"`
	Say      string          `mapstructure:"say" yaml:"say,omitempty"`
	Icon     string          `mapstructure:"icon" yaml:"icon,omitempty"`
}

// Catalog is a lookup table of descriptors. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
}

//go:embed default.yaml
var defaultCatalog []byte

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]Descriptor)}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in action catalog: %v", err))
	}
	return c
}

// Load reads a YAML catalog file and layers it over the built-in one.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read actions: %w", err)
	}
	overlay, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c := Default()
	for _, d := range overlay.All() {
		c.Register(d)
	}
	return c, nil
}

// Parse decodes a YAML document with a top-level "actions" list.
func Parse(data []byte) (*Catalog, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse actions: %w", err)
	}
	list, _ := doc["actions"].([]any)
	return Decode(list)
}

// Decode builds a catalog from generic maps, as found in YAML config files.
// Scalars are weakly typed so numeric script IDs are accepted.
func Decode(list []any) (*Catalog, error) {
	var descriptors []Descriptor
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &descriptors,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(list); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}

	c := NewCatalog()
	for i, d := range descriptors {
		if d.Action == "" {
			return nil, fmt.Errorf("action #%d: missing action id", i)
		}
		if d.Script == "" && d.Say == "" && d.Icon == "" {
			return nil, fmt.Errorf("action %q: needs script, say or icon", d.Action)
		}
		c.Register(d)
	}
	return c, nil
}

// Register adds or replaces a descriptor.
func (c *Catalog) Register(d Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key(d.Action, d.Modality)] = d
}

// Lookup finds the descriptor for the modality, falling back to the generic one.
func (c *Catalog) Lookup(action string, modality domain.Modality) (Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if d, ok := c.entries[key(action, modality)]; ok {
		return d, nil
	}
	if d, ok := c.entries[key(action, "")]; ok {
		return d, nil
	}
	return Descriptor{}, fmt.Errorf("%w: %s (%s)", domain.ErrUnknownAction, action, modality)
}

// All returns every descriptor sorted by action and modality.
func (c *Catalog) All() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Descriptor, 0, len(c.entries))
	for _, d := range c.entries {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Action != out[j].Action {
			return out[i].Action < out[j].Action
		}
		return out[i].Modality < out[j].Modality
	})
	return out
}

func key(action string, modality domain.Modality) string {
	return action + "/" + string(modality)
}
