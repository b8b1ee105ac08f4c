package navigation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

// classifyAnswer translates an interaction result into an automaton event.
// Anything outside the known vocabulary maps to EventNo together with
// ErrUnrecognizedInteractionResult, so the user keeps control in HoldHand.
func classifyAnswer(result string, err error) (string, error) {
	if errors.Is(err, ports.ErrInteractionTimeout) {
		return domain.EventTimeout, nil
	}
	if err != nil {
		return domain.EventNo, fmt.Errorf("%w: %v", domain.ErrUnrecognizedInteractionResult, err)
	}

	switch strings.ToLower(strings.TrimSpace(result)) {
	case "yes", "agree", "result_yes", "y":
		return domain.EventYes, nil
	case "no", "disagree", "result_no", "n", "failure":
		return domain.EventNo, nil
	case "timeout":
		return domain.EventTimeout, nil
	default:
		return domain.EventNo, fmt.Errorf("%w: %q", domain.ErrUnrecognizedInteractionResult, result)
	}
}
