package simulation

import (
	"context"
	"fmt"

	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// AuditSummary is what a stored state history adds up to
type AuditSummary struct {
	Snapshots          int
	PiecesProduced     int
	PiecesSold         int
	Deliveries         int
	MaterialsDelivered int
	AllRetired         bool
}

func (a AuditSummary) String() string {
	return fmt.Sprintf("%d snapshots, %d pieces produced, %d sold, %d deliveries (%d units of material)",
		a.Snapshots, a.PiecesProduced, a.PiecesSold, a.Deliveries, a.MaterialsDelivered)
}

// Audit re-checks every snapshot stored for a run
func Audit(ctx context.Context, repo common.SnapshotRepository, runID string) (*AuditSummary, error) {
	snapshots, err := repo.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots of run %s: %w", runID, err)
	}
	return AuditSnapshots(snapshots)
}

// AuditSnapshots checks that a history is complete, that every snapshot
// satisfies the conservation laws and that nobody came back from retirement
func AuditSnapshots(snapshots []handicraft.Snapshot) (*AuditSummary, error) {
	if len(snapshots) == 0 {
		return nil, shared.NewInvariantError("no snapshots to audit")
	}

	tracker := &handicraft.RetirementTracker{}
	for i, snap := range snapshots {
		if want := snapshots[0].Seq + uint64(i); snap.Seq != want {
			return nil, shared.NewInvariantError(fmt.Sprintf("snapshot %d missing from history (found %d)", want, snap.Seq))
		}
		if err := handicraft.CheckInvariants(snap); err != nil {
			return nil, err
		}
		if err := tracker.Observe(snap); err != nil {
			return nil, err
		}
	}

	last := snapshots[len(snapshots)-1]
	summary := &AuditSummary{
		Snapshots:          len(snapshots),
		PiecesProduced:     last.Workshop.PiecesProducedTotal,
		PiecesSold:         last.PiecesSold(),
		Deliveries:         last.Workshop.DeliveriesMade,
		MaterialsDelivered: last.Workshop.MaterialsDeliveredTotal,
		AllRetired:         true,
	}
	for _, c := range last.Customers {
		summary.AllRetired = summary.AllRetired && !c.Active
	}
	for _, c := range last.Craftsmen {
		summary.AllRetired = summary.AllRetired && !c.Active
	}
	return summary, nil
}
