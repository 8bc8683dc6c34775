package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/handicraft-go/internal/application/simulation"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
	"github.com/andrescamacho/handicraft-go/test/helpers"
)

var errScenarioOver = errors.New("scenario over")

// history keeps every snapshot a monitor reports and the invariant
// violations found in them
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

// fixedSelector makes every browsing customer take the same number of pieces
type fixedSelector int

func (f fixedSelector) Select(int) int { return int(f) }

// runOutcome is one finished simulation run
type runOutcome struct {
	seed    uint64
	runID   string
	report  *simulation.Report
	err     error
	history *history
}

// shopContext carries one scenario: the shop parameters, the runs made with
// them and, for monitor-level scenarios, a monitor driven step by step
type shopContext struct {
	params handicraft.Parameters
	clock  *shared.MockClock
	repos  *helpers.TestRepositories

	runs []runOutcome

	monitor  *handicraft.Monitor
	history  *history
	returned map[int]chan error // craftsman or customer id -> blocking call result
}

func (sc *shopContext) reset() {
	sc.params = handicraft.Parameters{
		Customers:         3,
		Craftsmen:         3,
		StoreroomCapacity: 4,
		LowWaterMark:      2,
		PieceSize:         1,
		Schedule:          []int{5, 5, 5, 6},
	}
	sc.clock = shared.NewMockClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	sc.runs = nil
	sc.monitor = nil
	sc.history = nil
	sc.returned = make(map[int]chan error)

	if err := helpers.TruncateAllTables(); err != nil {
		panic(fmt.Errorf("failed to truncate tables: %w", err))
	}
	sc.repos = helpers.NewTestRepositories(sc.clock)
}

// cleanup releases anything a scenario left parked on the monitor
func (sc *shopContext) cleanup() {
	if sc.monitor != nil {
		sc.monitor.Abort(errScenarioOver)
	}
}

// Given steps shared by every shop scenario

func (sc *shopContext) aShopWithCustomersAndCraftsmen(customers, craftsmen int) error {
	sc.params.Customers = customers
	sc.params.Craftsmen = craftsmen
	return nil
}

func (sc *shopContext) aStoreroomCapacityLowWaterMarkAndPieceSize(capacity, low, pieceSize int) error {
	sc.params.StoreroomCapacity = capacity
	sc.params.LowWaterMark = low
	sc.params.PieceSize = pieceSize
	return nil
}

func (sc *shopContext) theDeliverySchedule(schedule string) error {
	quantities, err := parseInts(schedule)
	if err != nil {
		return err
	}
	sc.params.Schedule = quantities
	return sc.params.Validate()
}

// parseInts reads "5,5,5,6" or "2, 0 and 1" style lists
func parseInts(list string) ([]int, error) {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no numbers in %q", list)
	}
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(within time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

// InitializeShopScenario registers the simulation and monitor steps
func InitializeShopScenario(ctx *godog.ScenarioContext) {
	sc := &shopContext{}

	ctx.Before(func(ctx context.Context, s *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		sc.cleanup()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a shop with (\d+) customers? and (\d+) craftsm[ae]n$`, sc.aShopWithCustomersAndCraftsmen)
	ctx.Step(`^a storeroom capacity of (\d+), a low water mark of (\d+) and a piece size of (\d+)$`, sc.aStoreroomCapacityLowWaterMarkAndPieceSize)
	ctx.Step(`^the delivery schedule "([^"]*)"$`, sc.theDeliverySchedule)

	registerSimulationSteps(ctx, sc)
	registerMonitorSteps(ctx, sc)
}
