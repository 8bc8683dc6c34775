package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// GormAgentRunRepository implements common.AgentRunRepository using GORM
type GormAgentRunRepository struct {
	db *gorm.DB
}

// NewGormAgentRunRepository creates a new GORM agent run repository
func NewGormAgentRunRepository(db *gorm.DB) *GormAgentRunRepository {
	return &GormAgentRunRepository{db: db}
}

// Save upserts the outcome of one agent
func (r *GormAgentRunRepository) Save(ctx context.Context, record *common.AgentRunRecord) error {
	model := &AgentRunModel{
		RunID:      record.RunID,
		Role:       string(record.Role),
		AgentIndex: record.Index,
		Status:     record.Status,
		ExitCode:   record.ExitCode,
		StartedAt:  record.StartedAt,
		StoppedAt:  record.StoppedAt,
		Error:      record.Error,
	}

	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}, {Name: "role"}, {Name: "agent_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "exit_code", "started_at", "stopped_at", "error"}),
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save agent run: %w", err)
	}
	return nil
}

// ListByRun returns the agents of a run: entrepreneur, customers, craftsmen
func (r *GormAgentRunRepository) ListByRun(ctx context.Context, runID string) ([]common.AgentRunRecord, error) {
	var models []AgentRunModel
	result := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("CASE role WHEN 'entrepreneur' THEN 0 WHEN 'customer' THEN 1 ELSE 2 END, agent_index ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list agent runs: %w", result.Error)
	}

	records := make([]common.AgentRunRecord, len(models))
	for i, model := range models {
		records[i] = common.AgentRunRecord{
			RunID:     model.RunID,
			Role:      handicraft.Role(model.Role),
			Index:     model.AgentIndex,
			Status:    model.Status,
			ExitCode:  model.ExitCode,
			StartedAt: model.StartedAt,
			StoppedAt: model.StoppedAt,
			Error:     model.Error,
		}
	}
	return records, nil
}

var _ common.AgentRunRepository = (*GormAgentRunRepository)(nil)
