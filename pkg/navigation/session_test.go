package navigation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/graph"
	"github.com/aretw0/wayfinder/pkg/navigation"
	"github.com/aretw0/wayfinder/pkg/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

type rig struct {
	body   *fakeBody
	dialog *fakeDialog
	touch  *fakeTouch
	log    *stateLog
	pos    *position.Manager
}

func newRig(t *testing.T) *rig {
	t.Helper()
	g := graph.New()
	g.AddNode("A", 0, 0)
	g.AddNode("C", 3, 0)
	g.AddNode("D", 3, 4)
	g.AddEdge("A", "C", 3, 0)
	g.AddEdge("C", "D", 4, 0)

	pos := position.New(g)
	require.NotEmpty(t, pos.ComputePath("A", "D", 0))

	return &rig{
		body:   &fakeBody{step: 10 * time.Millisecond},
		dialog: &fakeDialog{answers: map[string]string{}},
		touch:  &fakeTouch{},
		log:    &stateLog{},
		pos:    pos,
	}
}

func (r *rig) session(t *testing.T, opts ...navigation.Option) *navigation.Session {
	t.Helper()
	opts = append([]navigation.Option{
		navigation.WithStepInterval(10 * time.Millisecond),
		navigation.WithHooks(r.log.hooks()),
	}, opts...)
	s, err := navigation.New(navigation.Deps{
		Actuation:   r.body,
		Interaction: r.dialog,
		Touch:       r.touch,
		Position:    r.pos,
		User:        domain.User{ID: 0, Name: "Daniel", Modality: domain.ModalityVoice, Lang: "it"},
	}, opts...)
	require.NoError(t, err)
	return s
}

type outcome struct {
	res navigation.Result
	err error
}

func run(ctx context.Context, s *navigation.Session) <-chan outcome {
	ch := make(chan outcome, 1)
	go func() {
		res, err := s.Run(ctx)
		ch <- outcome{res, err}
	}()
	return ch
}

func waitState(t *testing.T, s *navigation.Session, state string) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == state }, waitFor, 5*time.Millisecond,
		"state %s never reached, current %s", state, s.State())
}

func finish(t *testing.T, ch <-chan outcome) outcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(waitFor):
		t.Fatal("session did not finish")
		return outcome{}
	}
}

func TestNew_RequiresPath(t *testing.T) {
	r := newRig(t)
	r.pos.ComputePath("A", "Z", 0)

	_, err := navigation.New(navigation.Deps{
		Actuation:   r.body,
		Interaction: r.dialog,
		Touch:       r.touch,
		Position:    r.pos,
	})
	assert.ErrorIs(t, err, domain.ErrNoRouteFound)
}

func TestSession_SteadyTimesOutToQuit(t *testing.T) {
	r := newRig(t)
	s := r.session(t, navigation.WithTimeout(50*time.Millisecond))

	out := finish(t, run(context.Background(), s))

	require.NoError(t, out.err)
	assert.False(t, out.res.Reached)
	assert.Equal(t, domain.EventTimeout, out.res.Reason)
	assert.Equal(t, []string{domain.StateSteady, domain.StateQuit}, r.log.States())
	assert.Equal(t, 1, r.touch.Unsubscribed())
	assert.Equal(t, navigation.DefaultPosture.Clamp(), navigation.Posture(r.body.LastJoints()))
	assert.Contains(t, r.dialog.Said(), "Sorry, I could not complete the guidance.")
	assert.Equal(t, "HandLeftBackTouched", r.touch.event)

	select {
	case <-s.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestSession_ReleaseStopsMotionOnce(t *testing.T) {
	r := newRig(t)
	r.body.stall = true
	s := r.session(t, navigation.WithTimeout(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := run(ctx, s)

	waitState(t, s, domain.StateSteady)
	require.True(t, r.touch.Fire(1))
	waitState(t, s, domain.StateMoving)
	require.Eventually(t, func() bool { return r.body.Moves() > 2 }, waitFor, 5*time.Millisecond)

	require.True(t, r.touch.Fire(0))
	waitState(t, s, domain.StateAsk)
	assert.Equal(t, 1, r.body.Stops())

	moves := r.body.Moves()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, moves, r.body.Moves(), "worker kept moving after release")

	cancel()
	out := finish(t, ch)
	assert.ErrorIs(t, out.err, context.Canceled)
	assert.Equal(t, domain.EventAbort, out.res.Reason)
	assert.Equal(t, 1, r.body.Stops())
}

func TestSession_AskAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   []string
	}{
		{
			name:   "yes quits",
			answer: "yes",
			want:   []string{domain.StateSteady, domain.StateMoving, domain.StateAsk, domain.StateQuit},
		},
		{
			name:   "no holds hand",
			answer: "no",
			want:   []string{domain.StateSteady, domain.StateMoving, domain.StateAsk, domain.StateHoldHand, domain.StateQuit},
		},
		{
			name:   "unrecognized holds hand",
			answer: "banana",
			want:   []string{domain.StateSteady, domain.StateMoving, domain.StateAsk, domain.StateHoldHand, domain.StateQuit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			r.body.stall = true
			r.dialog.answers["blind_ask_cancel"] = tt.answer
			s := r.session(t, navigation.WithTimeout(300*time.Millisecond))
			ch := run(context.Background(), s)

			waitState(t, s, domain.StateSteady)
			require.True(t, r.touch.Fire(1))
			require.True(t, r.touch.Fire(0))

			out := finish(t, ch)
			require.NoError(t, out.err)
			assert.False(t, out.res.Reached)
			assert.Equal(t, tt.want, r.log.States())
			assert.Equal(t, 1, r.body.Stops())
		})
	}
}

func TestSession_TouchInAskResumes(t *testing.T) {
	r := newRig(t)
	r.body.stall = true
	s := r.session(t, navigation.WithTimeout(time.Minute))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := run(ctx, s)

	waitState(t, s, domain.StateSteady)
	require.True(t, r.touch.Fire(1))
	require.True(t, r.touch.Fire(0))
	waitState(t, s, domain.StateAsk)
	require.True(t, r.touch.Fire(1))
	waitState(t, s, domain.StateMoving)

	cancel()
	finish(t, ch)
	assert.Equal(t, []string{
		domain.StateSteady, domain.StateMoving, domain.StateAsk, domain.StateMoving, domain.StateQuit,
	}, r.log.States())
	assert.Equal(t, 2, r.body.Stops())
}

func TestSession_GoalReached(t *testing.T) {
	r := newRig(t)
	s := r.session(t,
		navigation.WithTimeout(time.Minute),
		navigation.WithLinearVelocity(100),
	)
	ch := run(context.Background(), s)

	waitState(t, s, domain.StateSteady)
	require.True(t, r.touch.Fire(1))

	out := finish(t, ch)
	require.NoError(t, out.err)
	assert.True(t, out.res.Reached)
	assert.Equal(t, domain.EventGoalReached, out.res.Reason)
	assert.True(t, r.pos.IsComplete())
	assert.Contains(t, r.dialog.Said(), "We have arrived.")
	assert.NotContains(t, r.dialog.Said(), "Sorry, I could not complete the guidance.")
	assert.Equal(t, 1, r.body.Stops())

	snap := s.Snapshot()
	assert.True(t, snap.Done)
	assert.Equal(t, domain.StateQuit, snap.State)
	assert.Equal(t, []string{"A", "C", "D"}, snap.Path)
	assert.Equal(t, "A", snap.From)
	assert.Equal(t, "D", snap.To)
}

func TestSession_MovementFailureAsks(t *testing.T) {
	r := newRig(t)
	r.body.failMove = errors.New("wheel blocked")
	r.dialog.answers["blind_ask_cancel"] = "yes"
	s := r.session(t, navigation.WithTimeout(time.Minute))
	ch := run(context.Background(), s)

	waitState(t, s, domain.StateSteady)
	require.True(t, r.touch.Fire(1))

	out := finish(t, ch)
	require.NoError(t, out.err)
	assert.Equal(t, domain.EventYes, out.res.Reason)
	assert.Equal(t, []string{domain.StateSteady, domain.StateMoving, domain.StateAsk, domain.StateQuit}, r.log.States())
	assert.Equal(t, 1, r.body.Stops())
}

func TestSession_RunOnce(t *testing.T) {
	r := newRig(t)
	s := r.session(t, navigation.WithTimeout(10*time.Millisecond))

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	assert.Error(t, err)
}

func TestSession_SideFollowsPath(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, domain.Left, r.session(t).Side())
	assert.Equal(t, "HandRightBackTouched", r.session(t, navigation.WithSide(domain.Right)).TouchEventName())
}
