package simulation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/application/simulation"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// history keeps every snapshot of a run and the invariant violations seen
type history struct {
	mu         sync.Mutex
	snapshots  []handicraft.Snapshot
	tracker    handicraft.RetirementTracker
	violations []error
}

func (h *history) Record(s handicraft.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = append(h.snapshots, s)
	if err := handicraft.CheckInvariants(s); err != nil {
		h.violations = append(h.violations, err)
	}
	if err := h.tracker.Observe(s); err != nil {
		h.violations = append(h.violations, err)
	}
	return nil
}

func (h *history) all() []handicraft.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]handicraft.Snapshot(nil), h.snapshots...)
}

func shopParams() handicraft.Parameters {
	return handicraft.Parameters{
		Customers:         3,
		Craftsmen:         3,
		StoreroomCapacity: 4,
		LowWaterMark:      2,
		PieceSize:         1,
		Schedule:          []int{5, 5, 5, 6},
	}
}

func fastTiming() simulation.Timing {
	timing := simulation.DefaultTiming()
	timing.DoorRetryPerSecond = 1e6
	return timing
}

func newSimulation(t *testing.T, params handicraft.Parameters, seed uint64, observers ...handicraft.StateObserver) (*simulation.Simulation, *history, *shared.MockClock) {
	t.Helper()
	h := &history{}
	opts := []handicraft.MonitorOption{
		handicraft.WithObserver(h),
		handicraft.WithSelector(simulation.NewSelector(seed)),
	}
	for _, o := range observers {
		opts = append(opts, handicraft.WithObserver(o))
	}
	monitor, err := handicraft.NewMonitor(params, opts...)
	require.NoError(t, err)

	clock := shared.NewMockClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	sim := simulation.New(monitor,
		simulation.WithClock(clock),
		simulation.WithTiming(fastTiming()),
		simulation.WithSeed(seed),
	)
	return sim, h, clock
}

func runWithin(t *testing.T, sim *simulation.Simulation, limit time.Duration) (*simulation.Report, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()
	return sim.Run(ctx)
}
