package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// GormRunRepository implements common.RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GORM run repository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// Create inserts a new run
func (r *GormRunRepository) Create(ctx context.Context, run *common.RunRecord) error {
	scheduleJSON, err := json.Marshal(run.Parameters.Schedule)
	if err != nil {
		return fmt.Errorf("failed to serialize schedule: %w", err)
	}

	model := &RunModel{
		ID:                run.ID,
		Seed:              int64(run.Seed),
		Customers:         run.Parameters.Customers,
		Craftsmen:         run.Parameters.Craftsmen,
		StoreroomCapacity: run.Parameters.StoreroomCapacity,
		LowWaterMark:      run.Parameters.LowWaterMark,
		PieceSize:         run.Parameters.PieceSize,
		Schedule:          string(scheduleJSON),
		Status:            run.Status,
		StartedAt:         run.StartedAt,
		FinishedAt:        run.FinishedAt,
		Error:             run.Error,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish records how a run ended
func (r *GormRunRepository) Finish(ctx context.Context, runID, status string, finishedAt time.Time, runErr error) error {
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": finishedAt,
	}
	if runErr != nil {
		updates["error"] = runErr.Error()
	}

	result := r.db.WithContext(ctx).
		Model(&RunModel{}).
		Where("id = ?", runID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// FindByID retrieves a run
func (r *GormRunRepository) FindByID(ctx context.Context, runID string) (*common.RunRecord, error) {
	var model RunModel
	result := r.db.WithContext(ctx).Where("id = ?", runID).First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, fmt.Errorf("failed to find run: %w", result.Error)
	}

	var schedule []int
	if err := json.Unmarshal([]byte(model.Schedule), &schedule); err != nil {
		return nil, fmt.Errorf("failed to parse schedule of run %s: %w", runID, err)
	}

	return &common.RunRecord{
		ID:   model.ID,
		Seed: uint64(model.Seed),
		Parameters: handicraft.Parameters{
			Customers:         model.Customers,
			Craftsmen:         model.Craftsmen,
			StoreroomCapacity: model.StoreroomCapacity,
			LowWaterMark:      model.LowWaterMark,
			PieceSize:         model.PieceSize,
			Schedule:          schedule,
		},
		Status:     model.Status,
		StartedAt:  model.StartedAt,
		FinishedAt: model.FinishedAt,
		Error:      model.Error,
	}, nil
}

var _ common.RunRepository = (*GormRunRepository)(nil)
