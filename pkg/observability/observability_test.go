package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := NewMetrics()
	h := m.Hooks()
	ctx := context.Background()

	h.OnStateEnter(ctx, &domain.StateEvent{State: domain.StateMoving, Peer: domain.StateSteady})
	h.OnStateEnter(ctx, &domain.StateEvent{State: domain.StateMoving, Peer: domain.StateSteady})
	h.OnSignal(ctx, &domain.SignalEvent{State: domain.StateMoving, Name: domain.EventGoalReached, Dropped: true})
	h.OnSegment(ctx, &domain.SegmentEvent{Target: "C", Outcome: domain.SegmentReached, Duration: 3 * time.Second})
	h.OnError(ctx, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues(domain.StateMoving, domain.StateSteady)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signals.WithLabelValues(domain.StateMoving, domain.EventGoalReached, "true")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.segments))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors))
}

func TestMetrics_Trips(t *testing.T) {
	m := NewMetrics()
	m.TripStarted()
	m.TripStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.active))

	m.TripFinished(domain.EventGoalReached)
	m.TripFinished("")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.active))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trips.WithLabelValues(domain.EventGoalReached)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trips.WithLabelValues("unknown")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.TripStarted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wayfinder_active_trips 1")
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := domain.MergeHooks(LogHooks(logger), NewMetrics().Hooks())

	h.OnStateEnter(context.Background(), &domain.StateEvent{
		EventBase: domain.EventBase{SessionID: "s1"},
		State:     domain.StateAsk,
		Peer:      domain.StateMoving,
	})
	h.OnSignal(context.Background(), &domain.SignalEvent{State: domain.StateAsk, Name: domain.EventYes})

	out := buf.String()
	assert.Contains(t, out, `"msg":"state_enter"`)
	assert.Contains(t, out, `"state":"ask"`)
	assert.Contains(t, out, `"session_id":"s1"`)
	assert.Contains(t, out, `"event":"yes"`)
}
