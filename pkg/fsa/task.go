package fsa

import (
	"sync/atomic"
	"time"
)

// TaskStatus is the lifecycle of a scheduled task.
type TaskStatus int32

const (
	TaskArmed TaskStatus = iota
	TaskFired
	TaskCancelled
)

func (s TaskStatus) String() string {
	switch s {
	case TaskArmed:
		return "armed"
	case TaskFired:
		return "fired"
	case TaskCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Task is a one-shot cancellable scheduled callback.
//
// The timer callback only announces the fire. The owner settles the race
// between fire and cancel with Claim and Cancel: exactly one of them wins.
type Task struct {
	status atomic.Int32
	timer  *time.Timer
}

// Schedule arms a task that calls fire after d.
func Schedule(d time.Duration, fire func(*Task)) *Task {
	t := &Task{}
	t.timer = time.AfterFunc(d, func() { fire(t) })
	return t
}

// Claim moves an armed task to fired. It returns false if the task was cancelled or already claimed.
func (t *Task) Claim() bool {
	return t.status.CompareAndSwap(int32(TaskArmed), int32(TaskFired))
}

// Cancel moves an armed task to cancelled and stops its timer.
// Cancelling a fired or cancelled task is a no-op that returns false.
func (t *Task) Cancel() bool {
	if !t.status.CompareAndSwap(int32(TaskArmed), int32(TaskCancelled)) {
		return false
	}
	t.timer.Stop()
	return true
}

// Status returns the current lifecycle status.
func (t *Task) Status() TaskStatus {
	return TaskStatus(t.status.Load())
}
