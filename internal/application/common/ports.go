package common

import (
	"context"
	"time"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// RunRecord describes one simulation run in the run store
type RunRecord struct {
	ID         string
	Seed       uint64
	Parameters handicraft.Parameters
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      string
}

// AgentRunRecord is how one agent of a run ended
type AgentRunRecord struct {
	RunID     string
	Role      handicraft.Role
	Index     int
	Status    string
	ExitCode  int
	StartedAt *time.Time
	StoppedAt *time.Time
	Error     string
}

// RunRepository defines run persistence operations
type RunRepository interface {
	Create(ctx context.Context, run *RunRecord) error
	Finish(ctx context.Context, runID, status string, finishedAt time.Time, runErr error) error
	FindByID(ctx context.Context, runID string) (*RunRecord, error)
}

// SnapshotRepository stores the state history of a run
type SnapshotRepository interface {
	SaveBatch(ctx context.Context, runID string, snapshots []handicraft.Snapshot) error
	ListByRun(ctx context.Context, runID string) ([]handicraft.Snapshot, error)
	CountByRun(ctx context.Context, runID string) (int64, error)
}

// AgentRunRepository stores per-agent outcomes
type AgentRunRepository interface {
	Save(ctx context.Context, record *AgentRunRecord) error
	ListByRun(ctx context.Context, runID string) ([]AgentRunRecord, error)
}
