package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/handicraft-go/internal/adapters/metrics"
	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// LoggerFactory builds the private logger of one agent
type LoggerFactory func(role handicraft.Role, index int, name string) common.AgentLogger

// AgentReport is how one agent of a run ended
type AgentReport struct {
	Role      handicraft.Role
	Index     int
	Name      string
	Status    shared.LifecycleStatus
	ExitCode  int
	StartedAt *time.Time
	StoppedAt *time.Time
	Runtime   time.Duration
	Err       error
}

// Report is the outcome of a whole run. Agents are ordered entrepreneur,
// customers, craftsmen.
type Report struct {
	Agents []AgentReport
	Final  handicraft.Snapshot
}

// Succeeded is true when every agent retired normally
func (r *Report) Succeeded() bool {
	for _, a := range r.Agents {
		if a.ExitCode != 0 {
			return false
		}
	}
	return true
}

type agent struct {
	role  handicraft.Role
	index int
	run   func(ctx context.Context) error
}

func (s *Simulation) agents() []agent {
	agents := []agent{{role: handicraft.RoleEntrepreneur, run: s.RunEntrepreneur}}
	for id := range s.params.Customers {
		agents = append(agents, agent{
			role:  handicraft.RoleCustomer,
			index: id,
			run:   func(ctx context.Context) error { return s.RunCustomer(ctx, id) },
		})
	}
	for id := range s.params.Craftsmen {
		agents = append(agents, agent{
			role:  handicraft.RoleCraftsman,
			index: id,
			run:   func(ctx context.Context) error { return s.RunCraftsman(ctx, id) },
		})
	}
	return agents
}

// Run reports the initial state, starts one goroutine per agent and waits
// for all of them. A failing agent aborts the monitor so nobody stays parked;
// the error returned is the one that broke the run, never the knock-on
// aborts it caused. Cancelling ctx aborts the run the same way.
func (s *Simulation) Run(ctx context.Context) (*Report, error) {
	if err := s.monitor.Start(); err != nil {
		return nil, fmt.Errorf("failed to record initial state: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		s.monitor.Abort(context.Cause(ctx))
	})
	defer stop()

	agents := s.agents()
	reports := make([]AgentReport, len(agents))

	var g errgroup.Group
	for i, a := range agents {
		g.Go(func() error {
			reports[i] = s.runAgent(ctx, a)
			return reports[i].Err
		})
	}
	_ = g.Wait()

	report := &Report{Agents: reports, Final: s.monitor.Snapshot()}
	if err := s.monitor.Aborted(); err != nil {
		return report, err
	}
	return report, nil
}

func (s *Simulation) runAgent(ctx context.Context, a agent) AgentReport {
	name := AgentName(a.role, a.index)
	logger := common.LoggerFromContext(ctx)
	if s.loggers != nil {
		logger = s.loggers(a.role, a.index, name)
	}
	agentCtx := common.WithLogger(ctx, logger)

	lifecycle := shared.NewLifecycleStateMachine(s.clock)
	if err := lifecycle.Start(); err != nil {
		_ = lifecycle.Fail(err)
	} else {
		err := a.run(agentCtx)
		if err != nil {
			s.monitor.Abort(err)
			if !errors.Is(err, shared.ErrSimulationAborted) {
				logger.Log(common.LevelError, fmt.Sprintf("Terminating on error: %v", err), nil)
			}
		}
		_ = lifecycle.Finish(err)
	}

	metrics.RecordAgentTermination(string(a.role), string(lifecycle.Status()), lifecycle.RuntimeDuration())

	return AgentReport{
		Role:      a.role,
		Index:     a.index,
		Name:      name,
		Status:    lifecycle.Status(),
		ExitCode:  lifecycle.ExitCode(),
		StartedAt: lifecycle.StartedAt(),
		StoppedAt: lifecycle.StoppedAt(),
		Runtime:   lifecycle.RuntimeDuration(),
		Err:       lifecycle.LastError(),
	}
}
