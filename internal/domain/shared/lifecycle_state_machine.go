package shared

import (
	"fmt"
	"time"
)

// LifecycleStatus represents the state of an agent in its run
type LifecycleStatus string

const (
	// LifecycleStatusPending indicates the agent is created but not started
	LifecycleStatusPending LifecycleStatus = "PENDING"

	// LifecycleStatusRunning indicates the agent loop is executing
	LifecycleStatusRunning LifecycleStatus = "RUNNING"

	// LifecycleStatusRetired indicates the agent left its loop through its retirement predicate
	LifecycleStatusRetired LifecycleStatus = "RETIRED"

	// LifecycleStatusFailed indicates the agent terminated on a fatal error
	LifecycleStatusFailed LifecycleStatus = "FAILED"
)

// LifecycleStateMachine tracks one agent from start to termination.
//
// Invariants:
// - PENDING → RUNNING → RETIRED | FAILED, nothing else
// - once finished, the status never changes again
// - ExitCode is 0 only for RETIRED
type LifecycleStateMachine struct {
	status    LifecycleStatus
	createdAt time.Time
	startedAt *time.Time
	stoppedAt *time.Time
	lastError error
	clock     Clock
}

// NewLifecycleStateMachine creates a new lifecycle state machine in PENDING state
func NewLifecycleStateMachine(clock Clock) *LifecycleStateMachine {
	if clock == nil {
		clock = NewRealClock()
	}

	return &LifecycleStateMachine{
		status:    LifecycleStatusPending,
		createdAt: clock.Now(),
		clock:     clock,
	}
}

// Getters

func (sm *LifecycleStateMachine) Status() LifecycleStatus { return sm.status }
func (sm *LifecycleStateMachine) CreatedAt() time.Time    { return sm.createdAt }
func (sm *LifecycleStateMachine) StartedAt() *time.Time   { return sm.startedAt }
func (sm *LifecycleStateMachine) StoppedAt() *time.Time   { return sm.stoppedAt }
func (sm *LifecycleStateMachine) LastError() error        { return sm.lastError }

// Start transitions from PENDING to RUNNING
func (sm *LifecycleStateMachine) Start() error {
	if sm.status != LifecycleStatusPending {
		return fmt.Errorf("cannot start from %s state", sm.status)
	}

	now := sm.clock.Now()
	sm.status = LifecycleStatusRunning
	sm.startedAt = &now
	return nil
}

// Retire transitions from RUNNING to RETIRED
func (sm *LifecycleStateMachine) Retire() error {
	if sm.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot retire from %s state", sm.status)
	}

	now := sm.clock.Now()
	sm.status = LifecycleStatusRetired
	sm.stoppedAt = &now
	return nil
}

// Fail transitions to FAILED with the error that ended the agent.
// Allowed from PENDING (setup failure) and RUNNING.
func (sm *LifecycleStateMachine) Fail(err error) error {
	if sm.IsFinished() {
		return fmt.Errorf("cannot fail from %s state", sm.status)
	}

	now := sm.clock.Now()
	sm.status = LifecycleStatusFailed
	sm.lastError = err
	sm.stoppedAt = &now
	return nil
}

// Finish records the outcome of an agent loop: nil retires, anything else fails
func (sm *LifecycleStateMachine) Finish(err error) error {
	if err != nil {
		return sm.Fail(err)
	}
	return sm.Retire()
}

// IsRunning returns true if the agent is currently executing
func (sm *LifecycleStateMachine) IsRunning() bool {
	return sm.status == LifecycleStatusRunning
}

// IsFinished returns true if the agent has retired or failed
func (sm *LifecycleStateMachine) IsFinished() bool {
	return sm.status == LifecycleStatusRetired || sm.status == LifecycleStatusFailed
}

// ExitCode maps the status onto a process-style exit status
func (sm *LifecycleStateMachine) ExitCode() int {
	if sm.status == LifecycleStatusRetired {
		return 0
	}
	return 1
}

// RuntimeDuration calculates how long the agent has been/was running
// Returns 0 if not started yet
func (sm *LifecycleStateMachine) RuntimeDuration() time.Duration {
	if sm.startedAt == nil {
		return 0
	}

	endTime := sm.clock.Now()
	if sm.stoppedAt != nil {
		endTime = *sm.stoppedAt
	}

	return endTime.Sub(*sm.startedAt)
}
