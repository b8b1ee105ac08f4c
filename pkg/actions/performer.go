package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/wayfinder/internal/logging"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// Performer renders catalog actions on an interaction surface for one user.
type Performer struct {
	interaction ports.Interaction
	catalog     *Catalog
	modality    domain.Modality
	vars        *strings.Replacer
	logger      *slog.Logger
}

// PerformerOption configures a Performer.
type PerformerOption func(*Performer)

// WithVars substitutes {key} placeholders in spoken text.
func WithVars(vars map[string]string) PerformerOption {
	return func(p *Performer) {
		pairs := make([]string, 0, 2*len(vars))
		for k, v := range vars {
			pairs = append(pairs, "{"+k+"}", v)
		}
		p.vars = strings.NewReplacer(pairs...)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) PerformerOption {
	return func(p *Performer) {
		p.logger = logger
	}
}

// NewPerformer binds the catalog to the interaction surface and the user's modality.
func NewPerformer(interaction ports.Interaction, catalog *Catalog, modality domain.Modality, opts ...PerformerOption) *Performer {
	p := &Performer{
		interaction: interaction,
		catalog:     catalog,
		modality:    modality,
		vars:        strings.NewReplacer(),
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Modality returns the modality the performer renders for.
func (p *Performer) Modality() domain.Modality {
	return p.modality
}

// Perform plays an action without waiting for an answer.
// Scripts are run and their result discarded.
func (p *Performer) Perform(ctx context.Context, action string) error {
	d, err := p.catalog.Lookup(action, p.modality)
	if err != nil {
		return err
	}
	p.logger.Debug("Performing action", "action", action, "modality", p.modality)

	if d.Say != "" {
		if err := p.interaction.Say(ctx, p.vars.Replace(d.Say)); err != nil {
			return fmt.Errorf("say %s: %w", action, err)
		}
	}
	if d.Icon != "" {
		if err := p.interaction.ShowIcon(ctx, d.Icon); err != nil {
			return fmt.Errorf("show %s: %w", action, err)
		}
	}
	if d.Script != "" {
		if _, err := p.interaction.RunScriptedExchange(ctx, d.Script); err != nil {
			return fmt.Errorf("run %s: %w", action, err)
		}
	}
	return nil
}

// Exchange runs the action's script and returns the categorical result.
func (p *Performer) Exchange(ctx context.Context, action string) (string, error) {
	d, err := p.catalog.Lookup(action, p.modality)
	if err != nil {
		return "", err
	}
	if d.Script == "" {
		return "", fmt.Errorf("%w: %s has no script", domain.ErrUnknownAction, action)
	}
	result, err := p.interaction.RunScriptedExchange(ctx, d.Script)
	if err != nil {
		return "", err
	}
	result = strings.TrimSpace(result)
	p.logger.Debug("Exchange finished", "action", action, "result", result)
	return result, nil
}
