package navigation

import (
	"context"
	"sync"

	"github.com/aretw0/wayfinder/pkg/actions"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/fsa"
)

func (s *Session) ignore(state, event string) error {
	s.logger.Debug("Event ignored", "state", state, "event", event)
	return nil
}

// steadyState waits for the user to take the offered hand.
type steadyState struct {
	*fsa.TimeoutState
	s *Session
}

func (st *steadyState) OnEnter(ctx context.Context) error {
	st.s.posture(ctx, DefaultPosture, defaultPostureResetSpeed)
	st.s.perform(ctx, actions.HoldHand(st.s.side))
	st.s.posture(ctx, ArmRaised(st.s.side), defaultRaiseSpeed)
	st.Arm(ctx)
	return nil
}

func (st *steadyState) OnEvent(ctx context.Context, event string) error {
	st.Disarm()
	switch event {
	case domain.EventLimbTouched:
		return st.s.automaton.ChangeState(ctx, domain.StateMoving)
	case domain.EventTimeout, domain.EventAbort:
		return st.s.quit(ctx, event)
	default:
		return st.s.ignore(st.Name(), event)
	}
}

// movingState walks the path on a worker goroutine.
// The worker reports back only through guarded posts.
type movingState struct {
	s *Session

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (st *movingState) Name() string {
	return domain.StateMoving
}

func (st *movingState) OnEnter(ctx context.Context) error {
	epoch := st.s.dispatcher.Epoch()
	wctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel

	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		st.s.perform(wctx, actions.Walking)
		event := st.s.travel(wctx)
		if event == "" {
			return
		}
		st.s.dispatcher.PostGuarded(wctx, event, epoch, nil)
	}()
	return nil
}

func (st *movingState) OnEvent(ctx context.Context, event string) error {
	switch event {
	case domain.EventLimbReleased, domain.EventMovementFailed:
		st.halt(ctx)
		return st.s.automaton.ChangeState(ctx, domain.StateAsk)
	case domain.EventGoalReached:
		st.halt(ctx)
		st.s.perform(ctx, actions.Goal)
		return st.s.quit(ctx, event)
	case domain.EventAbort:
		st.halt(ctx)
		return st.s.quit(ctx, event)
	default:
		return st.s.ignore(st.Name(), event)
	}
}

func (st *movingState) OnExit(ctx context.Context) {
	st.halt(ctx)
}

// halt stops the worker and then the base. It is a no-op once halted.
func (st *movingState) halt(ctx context.Context) {
	if st.cancel == nil {
		return
	}
	st.cancel()
	st.cancel = nil
	st.wg.Wait()
	if err := st.s.deps.Actuation.StopMotion(ctx); err != nil {
		st.s.logger.Error("Stop motion failed", "err", err)
	}
}

// askState asks whether to cancel the trip while the robot stands still.
type askState struct {
	*fsa.TimeoutState
	s *Session

	cancel context.CancelFunc
}

func (st *askState) OnEnter(ctx context.Context) error {
	st.Arm(ctx)
	epoch := st.s.dispatcher.Epoch()
	wctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel

	go func() {
		result, err := st.s.performer.Exchange(wctx, actions.AskCancel)
		if wctx.Err() != nil {
			return
		}
		event, err := classifyAnswer(result, err)
		if err != nil {
			st.s.logger.Warn("Answer treated as no", "result", result, "err", err)
		}
		st.s.dispatcher.PostGuarded(wctx, event, epoch, nil)
	}()
	return nil
}

func (st *askState) OnEvent(ctx context.Context, event string) error {
	st.Disarm()
	switch event {
	case domain.EventYes, domain.EventTimeout, domain.EventAbort:
		return st.s.quit(ctx, event)
	case domain.EventNo:
		return st.s.automaton.ChangeState(ctx, domain.StateHoldHand)
	case domain.EventLimbTouched:
		return st.s.automaton.ChangeState(ctx, domain.StateMoving)
	default:
		return st.s.ignore(st.Name(), event)
	}
}

func (st *askState) OnExit(ctx context.Context) {
	st.TimeoutState.OnExit(ctx)
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
}

// holdHandState asks the user to take the hand again.
type holdHandState struct {
	*fsa.TimeoutState
	s *Session
}

func (st *holdHandState) OnEnter(ctx context.Context) error {
	st.s.perform(ctx, actions.HoldHand(st.s.side))
	st.s.posture(ctx, ArmRaised(st.s.side), defaultRaiseSpeed)
	st.Arm(ctx)
	return nil
}

func (st *holdHandState) OnEvent(ctx context.Context, event string) error {
	st.Disarm()
	switch event {
	case domain.EventLimbTouched:
		return st.s.automaton.ChangeState(ctx, domain.StateMoving)
	case domain.EventTimeout, domain.EventAbort:
		return st.s.quit(ctx, event)
	default:
		return st.s.ignore(st.Name(), event)
	}
}

// quitState is terminal.
type quitState struct {
	s *Session
}

func (st *quitState) Name() string {
	return domain.StateQuit
}

func (st *quitState) OnEnter(ctx context.Context) error {
	if st.s.reason != domain.EventGoalReached {
		st.s.perform(ctx, actions.Failure)
	}
	st.s.posture(ctx, DefaultPosture, defaultPostureResetSpeed)
	st.s.releaseTouch()
	st.s.logger.Info("Trip finished", "reason", st.s.reason)
	st.s.finish()
	return nil
}

func (st *quitState) OnEvent(_ context.Context, event string) error {
	return st.s.ignore(st.Name(), event)
}
