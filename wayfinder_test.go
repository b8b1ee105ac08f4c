package wayfinder_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/adapters/sim"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/aretw0/wayfinder/pkg/navigation"
	"github.com/aretw0/wayfinder/pkg/observability"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/aretw0/wayfinder/pkg/users"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var daniel = domain.User{ID: 0, Name: "Daniel", Modality: domain.ModalityVoice, Lang: "it"}

type fixture struct {
	guide  *wayfinder.Guide
	body   *sim.Body
	dialog *sim.Dialog
	touch  *memory.TouchHub
	users  *users.FileStore
	store  *memory.Store
	stats  *observability.Metrics
}

// newFixture builds Lobby(0,0) - Hall(3,0) - Lab(3,4) plus a stair-only Roof.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := graph.New()
	g.AddNode("Lobby", 0, 0)
	g.AddNode("Hall", 3, 0)
	g.AddNode("Lab", 3, 4)
	g.AddNode("Roof", 0, 4)
	g.AddEdge("Lobby", "Hall", 3, 0)
	g.AddEdge("Hall", "Lab", 4, 0)
	g.AddEdge("Lobby", "Roof", 4, 2)

	f := &fixture{
		body:   sim.NewBody(domain.Pose{}),
		dialog: sim.NewDialog(nil),
		touch:  memory.NewTouchHub(),
		users:  users.NewFileStore(filepath.Join(t.TempDir(), "users.txt")),
		store:  memory.NewStore(),
		stats:  observability.NewMetrics(),
	}
	guide, err := wayfinder.New(g, f.users, f.body, f.dialog, f.touch, nil,
		wayfinder.WithSessionStore(f.store),
		wayfinder.WithMetrics(f.stats),
		wayfinder.WithTimeout(2*time.Second),
		wayfinder.WithNavigationOptions(
			navigation.WithStepInterval(20*time.Millisecond),
			navigation.WithLinearVelocity(5),
		),
	)
	require.NoError(t, err)
	f.guide = guide
	return f
}

func (f *fixture) said() []string {
	var out []string
	for _, u := range f.dialog.Log() {
		if u.Kind == "say" {
			out = append(out, u.Text)
		}
	}
	return out
}

func TestNew_RequiresPorts(t *testing.T) {
	_, err := wayfinder.New(nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestIdentify(t *testing.T) {
	ctx := context.Background()

	t.Run("Known user", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.users.Append(ctx, daniel))

		got, err := f.guide.Identify(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, daniel, got)
		assert.Empty(t, f.dialog.Log(), "known users are not asked anything")
	})

	t.Run("Registers unknown user", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.users.Append(ctx, daniel))
		f.dialog.Answer("record_user", "deaf en 1 Iacopo Rossi")

		got, err := f.guide.Identify(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.User{ID: 1, Name: "Iacopo Rossi", Modality: domain.ModalityVisual, Lang: "en", Level: 1}, got)

		stored, err := f.users.Find(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, got, stored)
	})

	t.Run("Rejects short answers", func(t *testing.T) {
		f := newFixture(t)
		f.dialog.Answer("record_user", "blind")

		_, err := f.guide.Identify(ctx, 7)
		assert.ErrorIs(t, err, domain.ErrUnrecognizedInteractionResult)
		all, _ := f.users.List(ctx)
		assert.Empty(t, all)
	})
}

func TestParseRegistration(t *testing.T) {
	tests := []struct {
		in   string
		want domain.User
		err  bool
	}{
		{in: "blind it", want: domain.User{Modality: domain.ModalityVoice, Lang: "it"}},
		{in: "a en Anna", want: domain.User{Modality: domain.ModalityVoice, Lang: "en", Name: "Anna"}},
		{in: "deaf it 2", want: domain.User{Modality: domain.ModalityVisual, Lang: "it", Level: 2}},
		{in: "deaf it 2 Mario Bianchi", want: domain.User{Modality: domain.ModalityVisual, Lang: "it", Level: 2, Name: "Mario Bianchi"}},
		{in: "", err: true},
		{in: "mute it", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := wayfinder.ParseRegistration(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, domain.ErrUnrecognizedInteractionResult)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGreet(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.guide.Greet(context.Background(), daniel))

	assert.Equal(t, "it", f.dialog.Language())
	assert.Equal(t, []string{"Hello Daniel, welcome back."}, f.said())
}

func TestAskDestination(t *testing.T) {
	ctx := context.Background()

	t.Run("Answer is the room", func(t *testing.T) {
		f := newFixture(t)
		f.dialog.Answer("blind_agree", "Lab")
		to, err := f.guide.AskDestination(ctx, daniel)
		require.NoError(t, err)
		assert.Equal(t, "Lab", to)
	})

	t.Run("Declined", func(t *testing.T) {
		f := newFixture(t)
		f.dialog.Answer("blind_agree", "failure")
		_, err := f.guide.AskDestination(ctx, daniel)
		assert.ErrorIs(t, err, domain.ErrTripDeclined)
		assert.Equal(t, []string{
			"Alright. I will be here if you need me.",
			"Sorry, I could not complete the guidance.",
		}, f.said())
	})

	t.Run("Unanswered", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.guide.AskDestination(ctx, daniel)
		assert.ErrorIs(t, err, ports.ErrInteractionTimeout)
		assert.Contains(t, f.said(), "Sorry, I could not complete the guidance.")
	})
}

func TestTrip_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.guide.Trip(ctx, daniel, "Lobby", "Basement")
	assert.ErrorIs(t, err, domain.ErrUnknownRoom)

	_, err = f.guide.Trip(ctx, daniel, "Lab", "Lab")
	assert.ErrorIs(t, err, domain.ErrAlreadyThere)
}

func TestTrip_NoRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("Calls the destination", func(t *testing.T) {
		f := newFixture(t)
		f.dialog.Answer("blind_ask_call", "yes")

		out, err := f.guide.Trip(ctx, daniel, "Lobby", "Roof")
		assert.ErrorIs(t, err, domain.ErrNoRouteFound)
		assert.True(t, out.Called)
		assert.Empty(t, out.Path)
		assert.Contains(t, f.said(), "I am calling the room for you.")
	})

	t.Run("Call declined", func(t *testing.T) {
		f := newFixture(t)
		f.dialog.Answer("blind_ask_call", "failure")

		out, err := f.guide.Trip(ctx, daniel, "Lobby", "Roof")
		assert.ErrorIs(t, err, domain.ErrNoRouteFound)
		assert.ErrorIs(t, err, domain.ErrTripDeclined)
		assert.False(t, out.Called)
	})

	t.Run("Accessible with a higher level", func(t *testing.T) {
		f := newFixture(t)
		climber := daniel
		climber.Level = 2

		// Nobody touches the hand: the trip times out in Steady.
		out, err := f.guide.Trip(ctx, climber, "Lobby", "Roof")
		require.NoError(t, err)
		assert.Equal(t, []string{"Lobby", "Roof"}, out.Path.Names())
		assert.Equal(t, domain.EventTimeout, out.Result.Reason)
	})
}

func TestTrip_GoalReached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := "HandLeftBackTouched"

	done := make(chan struct{})
	var out wayfinder.Outcome
	var err error
	go func() {
		defer close(done)
		out, err = f.guide.Trip(ctx, daniel, "Lobby", "Lab")
	}()

	require.Eventually(t, func() bool { return f.touch.Subscribers(event) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		active := f.guide.Sessions().Active()
		return len(active) == 1 && active[0].State == domain.StateSteady
	}, time.Second, 5*time.Millisecond)
	f.touch.Publish(event, 1)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("trip did not finish")
	}
	require.NoError(t, err)
	assert.True(t, out.Result.Reached)
	assert.Equal(t, 7.0, out.Distance)
	assert.Equal(t, []string{"Lobby", "Hall", "Lab"}, out.Path.Names())
	assert.Contains(t, f.said(), "We have arrived.")
	assert.Zero(t, f.touch.Subscribers(event))
	assert.Empty(t, f.guide.Sessions().Active())

	snap, err := f.store.Load(ctx, out.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateQuit, snap.State)
	assert.True(t, snap.Done)
	assert.Equal(t, "Lab", snap.To)

	n, err := testutil.GatherAndCount(f.stats.Registry(), "wayfinder_trips_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
