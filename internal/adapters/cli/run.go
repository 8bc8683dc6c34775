package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/handicraft-go/internal/adapters/metrics"
	"github.com/andrescamacho/handicraft-go/internal/adapters/persistence"
	"github.com/andrescamacho/handicraft-go/internal/adapters/statelog"
	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/application/simulation"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/infrastructure/config"
	"github.com/andrescamacho/handicraft-go/internal/infrastructure/database"
	"github.com/andrescamacho/handicraft-go/internal/infrastructure/logging"
	"github.com/andrescamacho/handicraft-go/internal/infrastructure/pidfile"
)

const (
	runStatusRunning   = "RUNNING"
	runStatusCompleted = "COMPLETED"
	runStatusFailed    = "FAILED"

	snapshotBuffer    = 1024
	snapshotBatchSize = 100
	bookkeepingBudget = 30 * time.Second
)

type runFlags struct {
	logFile   string
	force     bool
	seed      uint64
	customers int
	craftsmen int
	schedule  []int
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation of the shop",
		Long: `Run the shop until every agent has retired.

The state log gets a two-line column header and then one line per change of
the shared state. When the log file already exists you are asked before it is
overwritten, unless --force is given. The run ends with a final report
showing how every agent terminated; the exit status is 1 if any of them failed.

Examples:
  handicraft run
  handicraft run --log-file shop.log --force
  handicraft run --seed 7 --schedule 5,5,5,6
  handicraft run --log-file - --customers 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runSimulation(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "State log file (\"-\" for stdout)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite an existing state log without asking")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "Seed for every random draw (0 = from clock)")
	cmd.Flags().IntVar(&flags.customers, "customers", 0, "Number of customers")
	cmd.Flags().IntVar(&flags.craftsmen, "craftsmen", 0, "Number of craftsmen")
	cmd.Flags().IntSliceVar(&flags.schedule, "schedule", nil, "Delivery quantities, e.g. 5,5,5,6")

	return cmd
}

// apply overrides the loaded configuration with the flags actually given
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("log-file") {
		cfg.StateLog.File = f.logFile
	}
	if changed("force") {
		cfg.StateLog.Force = f.force
	}
	if changed("seed") {
		cfg.Simulation.Seed = f.seed
	}
	if changed("customers") {
		cfg.Simulation.Customers = f.customers
	}
	if changed("craftsmen") {
		cfg.Simulation.Craftsmen = f.craftsmen
	}
	if changed("schedule") {
		cfg.Simulation.Schedule = f.schedule
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return config.ValidateConfig(cfg)
}

func timingFromConfig(t config.TimingConfig) simulation.Timing {
	return simulation.Timing{
		Unit:               t.Unit,
		ServiceMax:         t.ServiceMax,
		ProductionMax:      t.ProductionMax,
		ChoresMax:          t.ChoresMax,
		DoorRetryPerSecond: t.DoorRetryPerSecond,
		DoorRetryBurst:     t.DoorRetryBurst,
	}
}

// runSimulation wires the run store, state log, metrics and loggers around
// one simulation, runs it and prints the final report and audit
func runSimulation(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logCloser.Close()

	seed := cfg.Simulation.EffectiveSeed(time.Now())
	params := cfg.Simulation.Parameters(simulation.Rand(seed, simulation.StreamSchedule))
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid simulation parameters: %w", err)
	}

	// 1. Run store
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	runRepo := persistence.NewGormRunRepository(db)
	snapshotRepo := persistence.NewGormSnapshotRepository(db)
	agentRunRepo := persistence.NewGormAgentRunRepository(db)
	agentLogRepo := persistence.NewGormAgentLogRepository(db, nil)

	// 2. State log, owned by this run until it ends
	if cfg.StateLog.File != statelog.Stdout {
		lock := pidfile.ForStateLog(cfg.StateLog.File)
		if err := lock.Acquire(); err != nil {
			return fmt.Errorf("state log %s is in use: %w", cfg.StateLog.File, err)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("Failed to release state log", "err", err)
			}
		}()
	}
	stateLog, err := statelog.Open(cfg.StateLog.File, cfg.StateLog.Force, overwritePrompt(in, out),
		params.Customers, params.Craftsmen)
	if err != nil {
		return err
	}
	defer stateLog.Close()
	if err := stateLog.WriteHeader(); err != nil {
		return err
	}

	// 3. Run record. Bookkeeping outlives an interrupt of the run itself.
	storeCtx := context.WithoutCancel(ctx)
	runID := uuid.NewString()
	if err := runRepo.Create(storeCtx, &common.RunRecord{
		ID:         runID,
		Seed:       seed,
		Parameters: params,
		Status:     runStatusRunning,
		StartedAt:  time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	logger.Info("Simulation starting",
		"run", runID, "seed", seed,
		"customers", params.Customers, "craftsmen", params.Craftsmen,
		"schedule", params.Schedule)

	// 4. Observers
	recorder := persistence.NewSnapshotRecorder(snapshotRepo, runID, snapshotBuffer, snapshotBatchSize)
	opts := []handicraft.MonitorOption{
		handicraft.WithObserver(stateLog),
		handicraft.WithObserver(recorder),
		handicraft.WithSelector(simulation.NewSelector(seed)),
	}
	collector, stopMetrics, err := startMetrics(cfg.Metrics, logger)
	if err != nil {
		return err
	}
	defer stopMetrics()
	if collector != nil {
		opts = append(opts, handicraft.WithObserver(collector))
	}

	monitor, err := handicraft.NewMonitor(params, opts...)
	if err != nil {
		return err
	}

	// 5. One logger per agent, built up front so the factory only reads
	names := []string{simulation.AgentName(handicraft.RoleEntrepreneur, 0)}
	for i := range params.Customers {
		names = append(names, simulation.AgentName(handicraft.RoleCustomer, i))
	}
	for i := range params.Craftsmen {
		names = append(names, simulation.AgentName(handicraft.RoleCraftsman, i))
	}
	agentLoggers := make(map[string]*logging.AgentLogger, len(names))
	for _, name := range names {
		agentLoggers[name] = logging.NewAgentLogger(logger, runID, name, agentLogRepo)
	}

	sim := simulation.New(monitor,
		simulation.WithSeed(seed),
		simulation.WithTiming(timingFromConfig(cfg.Timing)),
		simulation.WithLoggerFactory(func(_ handicraft.Role, _ int, name string) common.AgentLogger {
			return agentLoggers[name]
		}),
	)

	// 6. Run
	runCtx := ctx
	if cfg.Timing.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timing.RunTimeout)
		defer cancel()
	}
	report, runErr := sim.Run(runCtx)

	// 7. Bookkeeping
	bk, cancel := context.WithTimeout(storeCtx, bookkeepingBudget)
	defer cancel()

	for _, l := range agentLoggers {
		l.Flush()
	}
	recordErr := recorder.Close(bk)
	if recordErr != nil {
		logger.Error("State history incomplete", "run", runID, "err", recordErr)
	}

	if report != nil {
		printReport(out, report)
		saveAgentRuns(bk, agentRunRepo, runID, report, logger)
	}

	status := runStatusCompleted
	if runErr != nil || recordErr != nil {
		status = runStatusFailed
	}
	if err := runRepo.Finish(bk, runID, status, time.Now(), errors.Join(runErr, recordErr)); err != nil {
		logger.Warn("Failed to finish run record", "run", runID, "err", err)
	}

	if runErr != nil {
		return fmt.Errorf("simulation failed: %w", runErr)
	}
	if recordErr != nil {
		return fmt.Errorf("failed to store state history: %w", recordErr)
	}

	summary, err := simulation.Audit(bk, snapshotRepo, runID)
	if err != nil {
		return fmt.Errorf("audit of run %s failed: %w", runID, err)
	}
	fmt.Fprintf(out, "\nAudit of run %s: %s\n", runID, summary)
	logger.Info("Simulation finished", "run", runID, "snapshots", summary.Snapshots)
	return nil
}

// startMetrics registers the simulation collector and serves it when metrics
// are enabled. The returned collector is nil otherwise.
func startMetrics(cfg config.MetricsConfig, logger *log.Logger) (*metrics.SimulationMetricsCollector, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	metrics.InitRegistry()
	collector := metrics.NewSimulationMetricsCollector()
	if err := collector.Register(); err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	metrics.SetGlobalCollector(collector)

	server, err := metrics.NewServer(cfg.Host, cfg.Port, cfg.Path)
	if err != nil {
		metrics.SetGlobalCollector(nil)
		return nil, nil, err
	}
	server.Start()
	logger.Info("Metrics available", "addr", server.Addr(), "path", cfg.Path)

	return collector, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server did not stop cleanly", "err", err)
		}
		metrics.SetGlobalCollector(nil)
	}, nil
}

func printReport(out io.Writer, report *simulation.Report) {
	fmt.Fprintln(out, "\nFinal report")
	for _, a := range report.Agents {
		switch a.Role {
		case handicraft.RoleEntrepreneur:
			fmt.Fprint(out, "the entrepreneur has terminated: ")
		default:
			fmt.Fprintf(out, "the %s, with id %d, has terminated: ", a.Role, a.Index)
		}
		fmt.Fprintf(out, "its status was %d\n", a.ExitCode)
	}
}

func saveAgentRuns(ctx context.Context, repo common.AgentRunRepository, runID string, report *simulation.Report, logger *log.Logger) {
	for _, a := range report.Agents {
		record := &common.AgentRunRecord{
			RunID:     runID,
			Role:      a.Role,
			Index:     a.Index,
			Status:    string(a.Status),
			ExitCode:  a.ExitCode,
			StartedAt: a.StartedAt,
			StoppedAt: a.StoppedAt,
		}
		if a.Err != nil {
			record.Error = a.Err.Error()
		}
		if err := repo.Save(ctx, record); err != nil {
			logger.Warn("Failed to record agent outcome", "agent", a.Name, "err", err)
		}
	}
}
