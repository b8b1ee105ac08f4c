package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// LogHooks writes every lifecycle event to logger.
// Signals are logged at debug level since touch sensors are chatty.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			logger.InfoContext(ctx, "state_enter",
				"session_id", e.SessionID,
				"state", e.State,
				"from", e.Peer,
				"epoch", e.Epoch,
			)
		},
		OnSignal: func(ctx context.Context, e *domain.SignalEvent) {
			logger.DebugContext(ctx, "signal",
				"session_id", e.SessionID,
				"state", e.State,
				"event", e.Name,
				"dropped", e.Dropped,
			)
		},
		OnSegment: func(ctx context.Context, e *domain.SegmentEvent) {
			logger.InfoContext(ctx, "segment",
				"session_id", e.SessionID,
				"target", e.Target,
				"outcome", e.Outcome,
				"duration", e.Duration,
			)
		},
		OnError: func(ctx context.Context, err error) {
			logger.ErrorContext(ctx, "automaton error", "err", err)
		},
	}
}
