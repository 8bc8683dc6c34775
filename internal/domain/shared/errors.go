package shared

import (
	"errors"
	"fmt"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// ErrSimulationAborted is returned from every gate operation once the run has
// been aborted, either by a fatal agent failure or by the driver.
var ErrSimulationAborted = errors.New("simulation aborted")

// Invariant violations. These are programming errors and always fatal.

type InvariantError struct {
	*DomainError
}

func NewInvariantError(message string) *InvariantError {
	return &InvariantError{DomainError: &DomainError{Message: message}}
}

type InconsistentQueueError struct {
	*InvariantError
}

func NewInconsistentQueueError(message string) *InconsistentQueueError {
	return &InconsistentQueueError{InvariantError: NewInvariantError(message)}
}

type QueueOverflowError struct {
	*InvariantError
	CustomerID int
}

func NewQueueOverflowError(customerID int, reason string) *QueueOverflowError {
	return &QueueOverflowError{
		InvariantError: NewInvariantError(fmt.Sprintf("cannot enqueue customer %d: %s", customerID, reason)),
		CustomerID:     customerID,
	}
}

type InvalidAgentIDError struct {
	*InvariantError
	Role  string
	ID    int
	Limit int
}

func NewInvalidAgentIDError(role string, id, limit int) *InvalidAgentIDError {
	return &InvalidAgentIDError{
		InvariantError: NewInvariantError(fmt.Sprintf("invalid %s id %d: must be in [0, %d)", role, id, limit)),
		Role:           role,
		ID:             id,
		Limit:          limit,
	}
}

// GateError wraps a failure of the synchronization substrate (for example the
// state log refusing a write while the gate is held).
type GateError struct {
	Op  string
	Err error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("gate failure during %s: %v", e.Op, e.Err)
}

func (e *GateError) Unwrap() error {
	return e.Err
}

func NewGateError(op string, err error) *GateError {
	return &GateError{Op: op, Err: err}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsInvariantViolation reports whether err carries a logical invariant violation
func IsInvariantViolation(err error) bool {
	var inv *InvariantError
	var queue *InconsistentQueueError
	var overflow *QueueOverflowError
	var badID *InvalidAgentIDError
	return errors.As(err, &inv) || errors.As(err, &queue) || errors.As(err, &overflow) || errors.As(err, &badID)
}
