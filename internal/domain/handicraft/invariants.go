package handicraft

import (
	"fmt"

	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// CheckInvariants verifies the conservation and bound laws that must hold
// every time the gate is released.
func CheckInvariants(s Snapshot) error {
	accounted := s.Shop.ProductsOnDisplay + s.Workshop.ProductsInStoreroom + s.PiecesSold() + s.PiecesInHand()
	if accounted != s.Workshop.PiecesProducedTotal {
		return shared.NewInvariantError(fmt.Sprintf(
			"snapshot %d: pieces not conserved: display %d + storeroom %d + sold %d + in hand %d != produced %d",
			s.Seq, s.Shop.ProductsOnDisplay, s.Workshop.ProductsInStoreroom, s.PiecesSold(), s.PiecesInHand(),
			s.Workshop.PiecesProducedTotal))
	}

	unconverted := s.Workshop.MaterialsDeliveredTotal - s.PieceSize*s.Workshop.PiecesProducedTotal
	if s.Workshop.MaterialsOnHand+s.MaterialsHeld() != unconverted || s.Workshop.MaterialsOnHand < 0 {
		return shared.NewInvariantError(fmt.Sprintf(
			"snapshot %d: materials not conserved: on hand %d + held %d != delivered %d - %d x produced %d",
			s.Seq, s.Workshop.MaterialsOnHand, s.MaterialsHeld(), s.Workshop.MaterialsDeliveredTotal,
			s.PieceSize, s.Workshop.PiecesProducedTotal))
	}

	if len(s.Queue) > s.QueueCapacity {
		return shared.NewInvariantError(fmt.Sprintf("snapshot %d: queue length %d exceeds %d", s.Seq, len(s.Queue), s.QueueCapacity))
	}
	seen := make(map[int]bool, len(s.Queue))
	for _, id := range s.Queue {
		if seen[id] {
			return shared.NewInvariantError(fmt.Sprintf("snapshot %d: customer %d queued twice", s.Seq, id))
		}
		seen[id] = true
	}

	if s.Workshop.DeliveriesMade > s.DeliveryCount {
		return shared.NewInvariantError(fmt.Sprintf(
			"snapshot %d: %d deliveries made from a schedule of %d", s.Seq, s.Workshop.DeliveriesMade, s.DeliveryCount))
	}
	return nil
}

// RetirementTracker checks that active flags only ever go from true to false
// across a sequence of snapshots.
type RetirementTracker struct {
	customersRetired []bool
	craftsmenRetired []bool
}

// Observe compares the snapshot against everything seen before
func (t *RetirementTracker) Observe(s Snapshot) error {
	if t.customersRetired == nil {
		t.customersRetired = make([]bool, len(s.Customers))
		t.craftsmenRetired = make([]bool, len(s.Craftsmen))
	}
	for i, c := range s.Customers {
		if t.customersRetired[i] && c.Active {
			return shared.NewInvariantError(fmt.Sprintf("snapshot %d: customer %d came back from retirement", s.Seq, i))
		}
		t.customersRetired[i] = t.customersRetired[i] || !c.Active
	}
	for i, c := range s.Craftsmen {
		if t.craftsmenRetired[i] && c.Active {
			return shared.NewInvariantError(fmt.Sprintf("snapshot %d: craftsman %d came back from retirement", s.Seq, i))
		}
		t.craftsmenRetired[i] = t.craftsmenRetired[i] || !c.Active
	}
	return nil
}
