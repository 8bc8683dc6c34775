package handicraft

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// Parameters fixes the size and supply of one simulation run.
// They are read-only once the shared state has been built.
type Parameters struct {
	// Customers is N, the number of customers (and the service queue capacity)
	Customers int
	// Craftsmen is M, the number of craftsmen
	Craftsmen int
	// StoreroomCapacity is the nominal batch size that triggers a collection
	StoreroomCapacity int
	// LowWaterMark is the material level at or below which craftsmen ask for more
	LowWaterMark int
	// PieceSize is the amount of prime material consumed by one piece
	PieceSize int
	// Schedule holds the quantity of every delivery, in order
	Schedule []int
}

// Validate rejects parameters that cannot drive a run
func (p Parameters) Validate() error {
	switch {
	case p.Customers < 1:
		return shared.NewValidationError("customers", "at least one customer is required")
	case p.Craftsmen < 1:
		return shared.NewValidationError("craftsmen", "at least one craftsman is required")
	case p.StoreroomCapacity < 1:
		return shared.NewValidationError("storeroom_capacity", "must be positive")
	case p.LowWaterMark < 0:
		return shared.NewValidationError("low_water_mark", "must not be negative")
	case p.PieceSize < 1:
		return shared.NewValidationError("piece_size", "must be positive")
	case p.LowWaterMark < p.PieceSize-1:
		// below this a workshop can run dry without anyone asking for more
		return shared.NewValidationError("low_water_mark", "must be at least piece size minus one")
	case len(p.Schedule) == 0:
		return shared.NewValidationError("schedule", "at least one delivery is required")
	}

	total := 0
	for i, q := range p.Schedule {
		if q < p.PieceSize {
			return shared.NewValidationError("schedule",
				fmt.Sprintf("delivery %d brings %d, less than one piece (%d)", i, q, p.PieceSize))
		}
		total += q
	}
	if total%p.PieceSize != 0 {
		return shared.NewValidationError("schedule",
			fmt.Sprintf("total material %d is not a multiple of piece size %d", total, p.PieceSize))
	}
	return nil
}

// DeliveryCount is the schedule length (NP)
func (p Parameters) DeliveryCount() int {
	return len(p.Schedule)
}

// GenerateSchedule draws a delivery schedule the way the shop has always been
// supplied: each delivery is about PP..11·PP units, the final one is raised to
// at least 2·PP·M so the run can wind down, and the total is a whole number of
// pieces.
func GenerateSchedule(rnd *rand.Rand, deliveries, pieceSize, craftsmen int) []int {
	if deliveries < 1 {
		return nil
	}

	schedule := make([]int, deliveries)
	total := 0
	for i := range schedule {
		schedule[i] = int(math.Floor(10.0*float64(pieceSize)*rnd.Float64() + float64(pieceSize) + 0.5))
		total += schedule[i]
	}

	last := deliveries - 1
	if floor := 2 * pieceSize * craftsmen; schedule[last] < floor {
		total += floor - schedule[last]
		schedule[last] = floor
	}
	if rem := total % pieceSize; rem != 0 {
		schedule[last] += pieceSize - rem
	}
	return schedule
}
