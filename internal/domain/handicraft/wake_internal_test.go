package handicraft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// These tests drive the materials-arrived signal directly, so they can grant
// a wrong number of permits and observe what the craftsmen do.

func wakeParams() Parameters {
	return Parameters{
		Customers:         1,
		Craftsmen:         3,
		StoreroomCapacity: 4,
		LowWaterMark:      2,
		PieceSize:         1,
		Schedule:          []int{1, 5, 5},
	}
}

func (m *Monitor) blockedCraftsmen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.BlockedCraftsmenCount
}

func (m *Monitor) permits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.materialPermits
}

// deliverWithPermits applies the next delivery like DeliverMaterials but
// grants an arbitrary number of wake-ups
func (m *Monitor) deliverWithPermits(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := &m.st.Workshop
	qty := m.st.params.Schedule[ws.DeliveriesMade]
	ws.MaterialsOnHand += qty
	ws.MaterialsDeliveredTotal += qty
	ws.DeliveriesMade++
	m.grantMaterialPermits(n)
	m.st.BlockedCraftsmenCount = 0
}

// parkCraftsmen empties the workshop and blocks the given craftsmen in
// FetchMaterials. The returned channel receives one result per craftsman.
func parkCraftsmen(t *testing.T, m *Monitor, ids ...int) <-chan error {
	t.Helper()
	_, err := m.FetchMaterials(0)
	require.NoError(t, err)
	_, err = m.StoreProduct(0)
	require.NoError(t, err)

	done := make(chan error, len(ids))
	for _, id := range ids {
		go func(id int) {
			_, err := m.FetchMaterials(id)
			done <- err
		}(id)
	}
	require.Eventually(t, func() bool { return m.blockedCraftsmen() == len(ids) }, time.Second, time.Millisecond)
	return done
}

func collect(done <-chan error, within time.Duration) (int, []error) {
	var errs []error
	deadline := time.After(within)
	for {
		select {
		case err := <-done:
			errs = append(errs, err)
		case <-deadline:
			return len(errs), errs
		}
	}
}

func TestMaterialsArrived_ExactWakeCount(t *testing.T) {
	// Arrange
	m, err := NewMonitor(wakeParams(), WithObserver(ObserverFunc(CheckInvariants)))
	require.NoError(t, err)
	done := parkCraftsmen(t, m, 0, 1, 2)

	// Act
	require.NoError(t, m.DeliverMaterials())

	// Assert
	n, errs := collect(done, 200*time.Millisecond)
	assert.Equal(t, 3, n)
	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Zero(t, m.permits())
	assert.Zero(t, m.blockedCraftsmen())
	assert.Equal(t, 2, m.Snapshot().Workshop.MaterialsOnHand)
}

func TestMaterialsArrived_TooFewWakesStrandACraftsman(t *testing.T) {
	// Arrange
	m, err := NewMonitor(wakeParams())
	require.NoError(t, err)
	done := parkCraftsmen(t, m, 0, 1, 2)

	// Act
	m.deliverWithPermits(2)

	// Assert: material is there but the third craftsman never hears about it
	n, _ := collect(done, 200*time.Millisecond)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, m.Snapshot().Workshop.MaterialsOnHand)

	m.Abort(nil)
	n, errs := collect(done, time.Second)
	require.Equal(t, 1, n)
	assert.ErrorIs(t, errs[0], shared.ErrSimulationAborted)
}

func TestMaterialsArrived_TooManyWakesLetALaterWaiterThrough(t *testing.T) {
	// Arrange: one parked craftsman, a one-unit delivery and two wake-ups
	p := wakeParams()
	p.Schedule = []int{1, 1, 5}
	m, err := NewMonitor(p)
	require.NoError(t, err)
	done := parkCraftsmen(t, m, 1)

	// Act
	m.deliverWithPermits(2)
	n, errs := collect(done, 200*time.Millisecond)
	require.Equal(t, 1, n)
	require.NoError(t, errs[0])
	require.Equal(t, 1, m.permits(), "one surplus wake-up left over")

	// a later craftsman finds the workshop empty again
	later := make(chan error, 1)
	go func() {
		_, err := m.FetchMaterials(2)
		later <- err
	}()

	// Assert: it consumes the stale permit without any delivery, rechecks
	// and parks again, having registered as blocked twice
	require.Eventually(t, func() bool { return m.blockedCraftsmen() == 2 }, time.Second, time.Millisecond)
	assert.Zero(t, m.permits())
	assert.Zero(t, m.Snapshot().Workshop.MaterialsOnHand)
	assert.NoError(t, CheckInvariants(m.Snapshot()))

	m.Abort(nil)
	assert.ErrorIs(t, <-later, shared.ErrSimulationAborted)
}
