package fsa_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/wayfinder/pkg/fsa"
	"github.com/stretchr/testify/assert"
)

func TestTask_ClaimAfterFire(t *testing.T) {
	fired := make(chan *fsa.Task, 1)
	task := fsa.Schedule(10*time.Millisecond, func(t *fsa.Task) { fired <- t })

	select {
	case got := <-fired:
		assert.Same(t, task, got)
	case <-time.After(time.Second):
		t.Fatal("task never fired")
	}

	assert.Equal(t, fsa.TaskArmed, task.Status(), "firing only announces, the owner claims")
	assert.True(t, task.Claim())
	assert.False(t, task.Claim())
	assert.False(t, task.Cancel(), "cancel after claim is a no-op")
	assert.Equal(t, fsa.TaskFired, task.Status())
}

func TestTask_CancelIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	task := fsa.Schedule(30*time.Millisecond, func(*fsa.Task) { calls.Add(1) })

	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel())
	assert.False(t, task.Claim())
	assert.Equal(t, fsa.TaskCancelled, task.Status())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load(), "stopped timer does not call back")
}

func TestTaskStatus_String(t *testing.T) {
	assert.Equal(t, "armed", fsa.TaskArmed.String())
	assert.Equal(t, "fired", fsa.TaskFired.String())
	assert.Equal(t, "cancelled", fsa.TaskCancelled.String())
}
