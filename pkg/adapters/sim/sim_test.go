package sim_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/adapters/sim"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBody_IntegratesVelocity(t *testing.T) {
	b := sim.NewBody(domain.Pose{Heading: math.Pi / 2})
	ctx := context.Background()

	require.NoError(t, b.MoveToward(ctx, 1, -math.Pi/2))
	assert.True(t, b.Moving())
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, b.StopMotion(ctx))
	assert.False(t, b.Moving())

	pose, err := b.GetPosition(ctx)
	require.NoError(t, err)
	assert.Greater(t, pose.X, 0.04)
	assert.InDelta(t, 0, pose.Y, 1e-9)

	time.Sleep(20 * time.Millisecond)
	again, _ := b.GetPosition(ctx)
	assert.Equal(t, pose, again, "stopped robot must not drift")
	assert.Equal(t, 1, b.Stops())
}

func TestDialog_AnswersInOrder(t *testing.T) {
	d := sim.NewDialog(nil)
	d.Answer("blind_ask_cancel", "no", "yes")
	ctx := context.Background()

	got, err := d.RunScriptedExchange(ctx, "blind_ask_cancel")
	require.NoError(t, err)
	assert.Equal(t, "no", got)
	got, _ = d.RunScriptedExchange(ctx, "blind_ask_cancel")
	assert.Equal(t, "yes", got)

	_, err = d.RunScriptedExchange(ctx, "blind_ask_cancel")
	assert.ErrorIs(t, err, ports.ErrInteractionTimeout)

	require.NoError(t, d.Say(ctx, "hello"))
	log := d.Log()
	assert.Equal(t, sim.Utterance{Kind: "say", Text: "hello"}, log[len(log)-1])
}

func TestDialog_Block(t *testing.T) {
	d := sim.NewDialog(nil)
	d.Block = true
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.RunScriptedExchange(ctx, "deaf_ask_cancel")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
