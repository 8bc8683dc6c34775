package handicraft_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

func TestWaitingQueue_FIFO(t *testing.T) {
	// Arrange
	q := handicraft.NewWaitingQueue(3)

	// Act
	require.NoError(t, q.Enqueue(2))
	require.NoError(t, q.Enqueue(0))
	require.NoError(t, q.Enqueue(1))

	// Assert
	assert.True(t, q.IsFull())
	assert.Equal(t, []int{2, 0, 1}, q.Items())

	for _, want := range []int{2, 0, 1} {
		got, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.True(t, q.IsEmpty())
}

func TestWaitingQueue_WrapsAround(t *testing.T) {
	q := handicraft.NewWaitingQueue(2)
	require.NoError(t, q.Enqueue(0))
	require.NoError(t, q.Enqueue(1))
	_, err := q.Dequeue()
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(0))

	assert.Equal(t, []int{1, 0}, q.Items())
	assert.Equal(t, 2, q.Len())
}

func TestWaitingQueue_RejectsDuplicate(t *testing.T) {
	// Arrange
	q := handicraft.NewWaitingQueue(3)
	require.NoError(t, q.Enqueue(1))

	// Act
	err := q.Enqueue(1)

	// Assert
	var overflow *shared.QueueOverflowError
	require.True(t, errors.As(err, &overflow))
	assert.Equal(t, 1, overflow.CustomerID)
	assert.Equal(t, 1, q.Len())
}

func TestWaitingQueue_RejectsOutOfRangeID(t *testing.T) {
	q := handicraft.NewWaitingQueue(2)

	err := q.Enqueue(2)

	var badID *shared.InvalidAgentIDError
	require.True(t, errors.As(err, &badID))
	assert.Equal(t, "customer", badID.Role)
	assert.True(t, shared.IsInvariantViolation(err))

	err = q.Enqueue(-1)
	assert.True(t, errors.As(err, &badID))
}

func TestWaitingQueue_DequeueEmpty(t *testing.T) {
	q := handicraft.NewWaitingQueue(1)

	_, err := q.Dequeue()

	var inconsistent *shared.InconsistentQueueError
	assert.True(t, errors.As(err, &inconsistent))
}
