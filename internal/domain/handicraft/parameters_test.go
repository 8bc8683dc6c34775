package handicraft_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

func defaultParams() handicraft.Parameters {
	return handicraft.Parameters{
		Customers:         3,
		Craftsmen:         3,
		StoreroomCapacity: 4,
		LowWaterMark:      2,
		PieceSize:         1,
		Schedule:          []int{5, 5, 5, 6},
	}
}

func TestParameters_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *handicraft.Parameters)
		field  string
	}{
		{"no customers", func(p *handicraft.Parameters) { p.Customers = 0 }, "customers"},
		{"no craftsmen", func(p *handicraft.Parameters) { p.Craftsmen = 0 }, "craftsmen"},
		{"zero capacity", func(p *handicraft.Parameters) { p.StoreroomCapacity = 0 }, "storeroom_capacity"},
		{"zero piece size", func(p *handicraft.Parameters) { p.PieceSize = 0 }, "piece_size"},
		{"empty schedule", func(p *handicraft.Parameters) { p.Schedule = nil }, "schedule"},
		{"delivery below one piece", func(p *handicraft.Parameters) {
			p.PieceSize = 2
			p.Schedule = []int{4, 1, 5}
		}, "schedule"},
		{"total not a whole number of pieces", func(p *handicraft.Parameters) {
			p.PieceSize = 2
			p.Schedule = []int{4, 3}
		}, "schedule"},
		{"low water mark too low", func(p *handicraft.Parameters) {
			p.PieceSize = 4
			p.Schedule = []int{8}
		}, "low_water_mark"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultParams()
			tt.mutate(&p)

			err := p.Validate()

			var verr *shared.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	assert.NoError(t, defaultParams().Validate())
}

func TestGenerateSchedule(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b9))
		pieceSize := int(seed%3) + 1
		craftsmen := int(seed%4) + 1

		schedule := handicraft.GenerateSchedule(rnd, 4, pieceSize, craftsmen)

		require.Len(t, schedule, 4)
		total := 0
		for _, q := range schedule {
			assert.GreaterOrEqual(t, q, pieceSize)
			total += q
		}
		assert.GreaterOrEqual(t, schedule[3], 2*pieceSize*craftsmen)
		assert.Zero(t, total%pieceSize, "seed %d: total %d", seed, total)

		p := defaultParams()
		p.PieceSize = pieceSize
		p.LowWaterMark = pieceSize
		p.Craftsmen = craftsmen
		p.Schedule = schedule
		assert.NoError(t, p.Validate())
	}
}

func TestGenerateSchedule_NoDeliveries(t *testing.T) {
	assert.Nil(t, handicraft.GenerateSchedule(rand.New(rand.NewPCG(1, 1)), 0, 1, 3))
}
