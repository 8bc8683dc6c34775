package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

type lifecycleStateMachineContext struct {
	stateMachine    *shared.LifecycleStateMachine
	clock           *shared.MockClock
	transitionError error
}

func (lc *lifecycleStateMachineContext) reset() {
	lc.stateMachine = nil
	lc.clock = shared.NewMockClock(time.Time{})
	lc.transitionError = nil
}

// Given steps

func (lc *lifecycleStateMachineContext) anAgentLifecycleInState(state string) error {
	lc.clock = shared.NewMockClock(time.Time{})
	lc.stateMachine = shared.NewLifecycleStateMachine(lc.clock)

	switch state {
	case "PENDING":
		return nil
	case "RUNNING":
		return lc.stateMachine.Start()
	case "RETIRED":
		if err := lc.stateMachine.Start(); err != nil {
			return err
		}
		return lc.stateMachine.Retire()
	case "FAILED":
		if err := lc.stateMachine.Start(); err != nil {
			return err
		}
		return lc.stateMachine.Fail(fmt.Errorf("test error"))
	default:
		return fmt.Errorf("unknown state: %s", state)
	}
}

func (lc *lifecycleStateMachineContext) secondsHavePassed(seconds int) error {
	lc.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

// When steps

func (lc *lifecycleStateMachineContext) theAgentStarts() error {
	lc.transitionError = lc.stateMachine.Start()
	return nil
}

func (lc *lifecycleStateMachineContext) theAgentLoopReturns(outcome string) error {
	var err error
	if outcome != "nothing" {
		err = fmt.Errorf("%s", outcome)
	}
	lc.transitionError = lc.stateMachine.Finish(err)
	return nil
}

func (lc *lifecycleStateMachineContext) theAgentRetires() error {
	lc.transitionError = lc.stateMachine.Retire()
	return nil
}

// Then steps

func (lc *lifecycleStateMachineContext) theLifecycleStatusShouldBe(expected string) error {
	if actual := string(lc.stateMachine.Status()); actual != expected {
		return fmt.Errorf("expected status %s, got %s", expected, actual)
	}
	return nil
}

func (lc *lifecycleStateMachineContext) theExitCodeShouldBe(expected int) error {
	if actual := lc.stateMachine.ExitCode(); actual != expected {
		return fmt.Errorf("expected exit code %d, got %d", expected, actual)
	}
	return nil
}

func (lc *lifecycleStateMachineContext) theTransitionShouldFailWith(expected string) error {
	if lc.transitionError == nil {
		return fmt.Errorf("expected transition to fail with '%s', but it succeeded", expected)
	}
	if lc.transitionError.Error() != expected {
		return fmt.Errorf("expected error '%s', got '%s'", expected, lc.transitionError.Error())
	}
	return nil
}

func (lc *lifecycleStateMachineContext) theLastErrorShouldBe(expected string) error {
	last := lc.stateMachine.LastError()
	if last == nil {
		return fmt.Errorf("expected last error to be '%s', but it was nil", expected)
	}
	if last.Error() != expected {
		return fmt.Errorf("expected last error '%s', got '%s'", expected, last.Error())
	}
	return nil
}

func (lc *lifecycleStateMachineContext) theRuntimeDurationShouldBeSeconds(seconds int) error {
	expected := time.Duration(seconds) * time.Second
	if actual := lc.stateMachine.RuntimeDuration(); actual != expected {
		return fmt.Errorf("expected runtime duration %v, got %v", expected, actual)
	}
	return nil
}

// InitializeLifecycleStateMachineScenario registers the agent lifecycle steps
func InitializeLifecycleStateMachineScenario(ctx *godog.ScenarioContext) {
	lc := &lifecycleStateMachineContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		lc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an agent lifecycle in "([^"]*)" state$`, lc.anAgentLifecycleInState)
	ctx.Step(`^(\d+) seconds have passed$`, lc.secondsHavePassed)

	// When steps
	ctx.Step(`^the agent starts$`, lc.theAgentStarts)
	ctx.Step(`^the agent loop returns "([^"]*)"$`, lc.theAgentLoopReturns)
	ctx.Step(`^the agent retires$`, lc.theAgentRetires)

	// Then steps
	ctx.Step(`^the lifecycle status should be "([^"]*)"$`, lc.theLifecycleStatusShouldBe)
	ctx.Step(`^the exit code should be (\d+)$`, lc.theExitCodeShouldBe)
	ctx.Step(`^the transition should fail with "([^"]*)"$`, lc.theTransitionShouldFailWith)
	ctx.Step(`^the last error should be "([^"]*)"$`, lc.theLastErrorShouldBe)
	ctx.Step(`^the runtime duration should be (\d+) seconds$`, lc.theRuntimeDurationShouldBeSeconds)
}
