package config

import (
	"math/rand/v2"
	"time"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// SimulationConfig sizes the shop and its supply
type SimulationConfig struct {
	// Number of customers (N), also the capacity of the service queue
	Customers int `mapstructure:"customers" validate:"min=1,max=256"`

	// Number of craftsmen (M)
	Craftsmen int `mapstructure:"craftsmen" validate:"min=1,max=256"`

	// Storeroom level that makes a craftsman call for collection
	StoreroomCapacity int `mapstructure:"storeroom_capacity" validate:"min=1"`

	// Material level at or below which a craftsman asks for a delivery
	LowWaterMark int `mapstructure:"low_water_mark" validate:"min=0"`

	// Prime material consumed by one piece
	PieceSize int `mapstructure:"piece_size" validate:"min=1"`

	// Number of deliveries to generate when no schedule is given
	Deliveries int `mapstructure:"deliveries" validate:"min=1"`

	// Explicit delivery schedule; generated from the seed when empty
	Schedule []int `mapstructure:"schedule" validate:"omitempty,dive,min=1"`

	// Seed for every random draw of the run; 0 picks one from the clock
	Seed uint64 `mapstructure:"seed"`
}

// EffectiveSeed returns the configured seed, or one derived from now
func (c SimulationConfig) EffectiveSeed(now time.Time) uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return uint64(now.UnixNano())
}

// Parameters builds the run parameters, drawing the schedule from rnd when
// none is configured
func (c SimulationConfig) Parameters(rnd *rand.Rand) handicraft.Parameters {
	schedule := append([]int(nil), c.Schedule...)
	if len(schedule) == 0 {
		schedule = handicraft.GenerateSchedule(rnd, c.Deliveries, c.PieceSize, c.Craftsmen)
	}
	return handicraft.Parameters{
		Customers:         c.Customers,
		Craftsmen:         c.Craftsmen,
		StoreroomCapacity: c.StoreroomCapacity,
		LowWaterMark:      c.LowWaterMark,
		PieceSize:         c.PieceSize,
		Schedule:          schedule,
	}
}
