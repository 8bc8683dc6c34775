package steps

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/google/uuid"

	"github.com/andrescamacho/handicraft-go/internal/adapters/persistence"
	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/application/simulation"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/infrastructure/logging"
)

const runLimit = 20 * time.Second

// When steps

func (sc *shopContext) theSimulationRunsWithSeed(seed int) error {
	return sc.runWithSeed(uint64(seed))
}

func (sc *shopContext) theSimulationRunsWithEverySeedFromTo(from, to int) error {
	for seed := from; seed <= to; seed++ {
		if err := sc.runWithSeed(uint64(seed)); err != nil {
			return err
		}
	}
	return nil
}

// theSimulationRunsWithTheSeeds takes a table whose first column is the seed
func (sc *shopContext) theSimulationRunsWithTheSeeds(table *messages.PickleTable) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		seed, err := strconv.ParseUint(row.Cells[0].Value, 10, 64)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := sc.runWithSeed(seed); err != nil {
			return err
		}
	}
	return nil
}

func (sc *shopContext) theSimulationRunsWithGeneratedSchedulesForSeedsFromTo(deliveries, from, to int) error {
	for seed := from; seed <= to; seed++ {
		sc.params.Schedule = handicraft.GenerateSchedule(
			simulation.Rand(uint64(seed), simulation.StreamSchedule),
			deliveries, sc.params.PieceSize, sc.params.Craftsmen)
		if err := sc.runWithSeed(uint64(seed)); err != nil {
			return err
		}
	}
	return nil
}

// runWithSeed runs the whole shop once, recording its history in the run
// store and its agents' logs in the agent log table
func (sc *shopContext) runWithSeed(seed uint64) error {
	ctx := context.Background()
	params := sc.params
	params.Schedule = append([]int(nil), sc.params.Schedule...)

	runID := uuid.NewString()
	if err := sc.repos.RunRepo.Create(ctx, &common.RunRecord{
		ID:         runID,
		Seed:       seed,
		Parameters: params,
		Status:     "RUNNING",
		StartedAt:  sc.clock.Now(),
	}); err != nil {
		return err
	}

	h := &history{}
	recorder := persistence.NewSnapshotRecorder(sc.repos.SnapshotRepo, runID, 1024, 100)
	monitor, err := handicraft.NewMonitor(params,
		handicraft.WithObserver(h),
		handicraft.WithObserver(recorder),
		handicraft.WithSelector(simulation.NewSelector(seed)),
	)
	if err != nil {
		return err
	}

	loggers := make(map[string]*logging.AgentLogger)
	factory := func(_ handicraft.Role, _ int, name string) common.AgentLogger {
		return loggers[name]
	}
	for _, name := range agentNames(params) {
		loggers[name] = logging.NewAgentLogger(logging.Discard(), runID, name, sc.repos.AgentLogRepo)
	}

	timing := simulation.DefaultTiming()
	timing.DoorRetryPerSecond = 1e6
	sim := simulation.New(monitor,
		simulation.WithClock(sc.clock),
		simulation.WithTiming(timing),
		simulation.WithSeed(seed),
		simulation.WithLoggerFactory(factory),
	)

	runCtx, cancel := context.WithTimeout(ctx, runLimit)
	defer cancel()
	report, runErr := sim.Run(runCtx)

	for _, l := range loggers {
		l.Flush()
	}
	if err := recorder.Close(ctx); err != nil {
		return fmt.Errorf("failed to store history of seed %d: %w", seed, err)
	}

	sc.runs = append(sc.runs, runOutcome{seed: seed, runID: runID, report: report, err: runErr, history: h})
	return nil
}

func agentNames(params handicraft.Parameters) []string {
	names := []string{simulation.AgentName(handicraft.RoleEntrepreneur, 0)}
	for i := range params.Customers {
		names = append(names, simulation.AgentName(handicraft.RoleCustomer, i))
	}
	for i := range params.Craftsmen {
		names = append(names, simulation.AgentName(handicraft.RoleCraftsman, i))
	}
	return names
}

// Then steps

func (sc *shopContext) eachRun(check func(run runOutcome) error) error {
	if len(sc.runs) == 0 {
		return fmt.Errorf("no simulation has run")
	}
	for _, run := range sc.runs {
		if err := check(run); err != nil {
			return fmt.Errorf("seed %d: %w", run.seed, err)
		}
	}
	return nil
}

func (sc *shopContext) everyAgentTerminatesWithStatus(status int) error {
	return sc.eachRun(func(run runOutcome) error {
		if run.err != nil {
			return fmt.Errorf("run failed: %w", run.err)
		}
		for _, a := range run.report.Agents {
			if a.ExitCode != status {
				return fmt.Errorf("%s terminated with status %d (%v)", a.Name, a.ExitCode, a.Err)
			}
		}
		return nil
	})
}

func (sc *shopContext) piecesAreProducedAndSold(pieces int) error {
	return sc.eachRun(func(run runOutcome) error {
		final := run.report.Final
		if final.Workshop.PiecesProducedTotal != pieces || final.PiecesSold() != pieces {
			return fmt.Errorf("expected %d pieces produced and sold, got %d produced and %d sold",
				pieces, final.Workshop.PiecesProducedTotal, final.PiecesSold())
		}
		return nil
	})
}

func (sc *shopContext) everyDeliveredUnitEndsUpSold() error {
	return sc.eachRun(func(run runOutcome) error {
		final := run.report.Final
		want := final.Workshop.MaterialsDeliveredTotal / final.PieceSize
		if final.PiecesSold() != want {
			return fmt.Errorf("delivered material for %d pieces but %d were sold", want, final.PiecesSold())
		}
		return nil
	})
}

func (sc *shopContext) theShopIsLeftEmpty() error {
	return sc.eachRun(func(run runOutcome) error {
		final := run.report.Final
		switch {
		case final.Shop.ProductsOnDisplay != 0:
			return fmt.Errorf("%d pieces left on display", final.Shop.ProductsOnDisplay)
		case final.Workshop.ProductsInStoreroom != 0:
			return fmt.Errorf("%d pieces left in the storeroom", final.Workshop.ProductsInStoreroom)
		case final.Workshop.MaterialsOnHand != 0:
			return fmt.Errorf("%d units of material left", final.Workshop.MaterialsOnHand)
		case final.Shop.CustomersInside != 0 || len(final.Queue) != 0:
			return fmt.Errorf("customers left behind: %d inside, queue %v", final.Shop.CustomersInside, final.Queue)
		}
		return nil
	})
}

func (sc *shopContext) noInvariantIsViolated() error {
	return sc.eachRun(func(run runOutcome) error {
		run.history.mu.Lock()
		defer run.history.mu.Unlock()
		if len(run.history.violations) > 0 {
			return fmt.Errorf("%d violations, first: %w", len(run.history.violations), run.history.violations[0])
		}
		return nil
	})
}

func (sc *shopContext) theFinalReportListsRolesInOrder() error {
	return sc.eachRun(func(run runOutcome) error {
		want := agentNames(sc.params)
		if len(run.report.Agents) != len(want) {
			return fmt.Errorf("expected %d agents in the report, got %d", len(want), len(run.report.Agents))
		}
		for i, a := range run.report.Agents {
			if a.Name != want[i] {
				return fmt.Errorf("report line %d is %s, expected %s", i, a.Name, want[i])
			}
		}
		return nil
	})
}

func (sc *shopContext) theStoredHistoryPassesTheAudit() error {
	return sc.eachRun(func(run runOutcome) error {
		summary, err := simulation.Audit(context.Background(), sc.repos.SnapshotRepo, run.runID)
		if err != nil {
			return err
		}
		if want := len(run.history.all()); summary.Snapshots != want {
			return fmt.Errorf("stored %d snapshots, monitor reported %d", summary.Snapshots, want)
		}
		if !summary.AllRetired {
			return fmt.Errorf("stored history ends with agents still active")
		}
		return nil
	})
}

func (sc *shopContext) theLastCraftsmanHandedTheStoreroomOver() error {
	return sc.eachRun(func(run runOutcome) error {
		snaps := run.history.all()
		for i := 1; i < len(snaps); i++ {
			before, after := snaps[i-1], snaps[i]
			if activeCraftsmen(before) == 1 && activeCraftsmen(after) == 0 {
				if after.Workshop.ProductsInStoreroom == 0 {
					return nil
				}
				if !after.Shop.BatchReadyFlag {
					return fmt.Errorf("last craftsman left %d pieces without calling the entrepreneur",
						after.Workshop.ProductsInStoreroom)
				}
				return nil
			}
		}
		return fmt.Errorf("no craftsman retirement found in the history")
	})
}

func (sc *shopContext) theStoreroomWasNeverFull() error {
	return sc.eachRun(func(run runOutcome) error {
		for _, s := range run.history.all() {
			if s.Workshop.ProductsInStoreroom >= sc.params.StoreroomCapacity {
				return fmt.Errorf("storeroom reached %d at snapshot %d", s.Workshop.ProductsInStoreroom, s.Seq)
			}
		}
		return nil
	})
}

func (sc *shopContext) agentLogged(agent, message string) error {
	return sc.eachRun(func(run runOutcome) error {
		entries, err := sc.repos.AgentLogRepo.GetLogs(context.Background(), run.runID, &agent, nil, 100)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if strings.Contains(e.Message, message) {
				return nil
			}
		}
		return fmt.Errorf("%s never logged %q (%d entries)", agent, message, len(entries))
	})
}

func activeCraftsmen(s handicraft.Snapshot) int {
	n := 0
	for _, c := range s.Craftsmen {
		if c.Active {
			n++
		}
	}
	return n
}

func registerSimulationSteps(ctx *godog.ScenarioContext, sc *shopContext) {
	// When steps
	ctx.Step(`^the simulation runs with seed (\d+)$`, sc.theSimulationRunsWithSeed)
	ctx.Step(`^the simulation runs with every seed from (\d+) to (\d+)$`, sc.theSimulationRunsWithEverySeedFromTo)
	ctx.Step(`^the simulation runs with the seeds:$`, sc.theSimulationRunsWithTheSeeds)
	ctx.Step(`^the simulation runs on (\d+) generated deliveries for every seed from (\d+) to (\d+)$`, sc.theSimulationRunsWithGeneratedSchedulesForSeedsFromTo)

	// Then steps
	ctx.Step(`^every agent terminates with status (\d+)$`, sc.everyAgentTerminatesWithStatus)
	ctx.Step(`^(\d+) pieces? (?:are|is) produced and sold$`, sc.piecesAreProducedAndSold)
	ctx.Step(`^every delivered unit of material ends up sold$`, sc.everyDeliveredUnitEndsUpSold)
	ctx.Step(`^the shop is left empty$`, sc.theShopIsLeftEmpty)
	ctx.Step(`^no invariant is violated$`, sc.noInvariantIsViolated)
	ctx.Step(`^the final report lists the entrepreneur first, then the customers, then the craftsmen$`, sc.theFinalReportListsRolesInOrder)
	ctx.Step(`^the stored history of every run passes the audit$`, sc.theStoredHistoryPassesTheAudit)
	ctx.Step(`^the last craftsman to retire handed the storeroom over to the entrepreneur$`, sc.theLastCraftsmanHandedTheStoreroomOver)
	ctx.Step(`^the storeroom never reached its capacity$`, sc.theStoreroomWasNeverFull)
	ctx.Step(`^"([^"]*)" logged "([^"]*)"$`, sc.agentLogged)
}
