package robot_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aretw0/wayfinder/pkg/adapters/robot"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	path string
	body map[string]any
}

func fakeRobot(t *testing.T) (*httptest.Server, func() []recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/base/pose", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]float64{"x": 1.5, "y": -2, "heading": 0.25})
	})
	mux.HandleFunc("POST /api/joints/stiffness", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "motors off", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("POST /", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		calls = append(calls, recorded{path: r.URL.Path, body: body})
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestClient_Commands(t *testing.T) {
	srv, calls := fakeRobot(t)
	c := robot.New(srv.URL + "/")
	ctx := context.Background()

	require.NoError(t, c.MoveToward(ctx, 0.3, -0.5))
	require.NoError(t, c.StopMotion(ctx))
	require.NoError(t, c.SetJointAngles(ctx, map[string]float64{"HeadYaw": 0.1}, 0.25))

	got := calls()
	require.Len(t, got, 3)
	assert.Equal(t, "/api/base/move", got[0].path)
	assert.Equal(t, map[string]any{"linear_velocity": 0.3, "angle": -0.5}, got[0].body)
	assert.Equal(t, "/api/base/stop", got[1].path)
	assert.Equal(t, "/api/joints/angles", got[2].path)
	assert.Equal(t, 0.25, got[2].body["speed"])
}

func TestClient_GetPosition(t *testing.T) {
	srv, _ := fakeRobot(t)
	pose, err := robot.New(srv.URL).GetPosition(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.Pose{X: 1.5, Y: -2, Heading: 0.25}, pose)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv, _ := fakeRobot(t)
	err := robot.New(srv.URL).SetStiffness(context.Background(), "Body", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "motors off")
}

func TestClient_CancelledContext(t *testing.T) {
	srv, _ := fakeRobot(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, robot.New(srv.URL).MoveToward(ctx, 0.3, 0), context.Canceled)
}
