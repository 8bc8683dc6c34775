package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// GormSnapshotRepository implements common.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db        *gorm.DB
	batchSize int
}

// NewGormSnapshotRepository creates a new GORM snapshot repository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db, batchSize: 100}
}

// SaveBatch inserts snapshots of one run in a single transaction
func (r *GormSnapshotRepository) SaveBatch(ctx context.Context, runID string, snapshots []handicraft.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	models := make([]SnapshotModel, 0, len(snapshots))
	for _, s := range snapshots {
		model, err := snapshotToModel(runID, s)
		if err != nil {
			return err
		}
		models = append(models, *model)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, r.batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert snapshots: %w", err)
	}
	return nil
}

// ListByRun returns the history of a run in sequence order
func (r *GormSnapshotRepository) ListByRun(ctx context.Context, runID string) ([]handicraft.Snapshot, error) {
	var models []SnapshotModel
	result := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("seq ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", result.Error)
	}

	snapshots := make([]handicraft.Snapshot, 0, len(models))
	for _, model := range models {
		var s handicraft.Snapshot
		if err := json.Unmarshal([]byte(model.State), &s); err != nil {
			return nil, fmt.Errorf("failed to parse snapshot %d of run %s: %w", model.Seq, runID, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// CountByRun returns how many snapshots a run has stored
func (r *GormSnapshotRepository) CountByRun(ctx context.Context, runID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&SnapshotModel{}).Where("run_id = ?", runID).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", result.Error)
	}
	return count, nil
}

func snapshotToModel(runID string, s handicraft.Snapshot) (*SnapshotModel, error) {
	stateJSON, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot %d: %w", s.Seq, err)
	}

	return &SnapshotModel{
		RunID:               runID,
		Seq:                 s.Seq,
		Entrepreneur:        s.Entrepreneur.Tag(),
		ShopStatus:          s.Shop.Status.Tag(),
		CustomersInside:     s.Shop.CustomersInside,
		ProductsOnDisplay:   s.Shop.ProductsOnDisplay,
		ProductsInStoreroom: s.Workshop.ProductsInStoreroom,
		MaterialsOnHand:     s.Workshop.MaterialsOnHand,
		DeliveriesMade:      s.Workshop.DeliveriesMade,
		PiecesProducedTotal: s.Workshop.PiecesProducedTotal,
		PiecesSold:          s.PiecesSold(),
		QueueLength:         len(s.Queue),
		State:               string(stateJSON),
	}, nil
}

var _ common.SnapshotRepository = (*GormSnapshotRepository)(nil)
