package simulation

import (
	"context"

	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// RunCraftsman is the life cycle of craftsman id: take material, make a
// piece, store it, and call the entrepreneur when material runs low or the
// storeroom fills up.
func (s *Simulation) RunCraftsman(ctx context.Context, id int) error {
	logger := common.LoggerFromContext(ctx)
	pacer := s.pacerFor(handicraft.RoleCraftsman, id)
	m := s.monitor

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		retire, err := m.CraftsmanShouldRetire(id)
		if err != nil {
			return err
		}
		if retire {
			logger.Log(common.LevelInfo, "Workshop out of material", nil)
			return nil
		}

		lowOnMaterial, err := m.FetchMaterials(id)
		if err != nil {
			return err
		}
		if lowOnMaterial {
			if err := m.RequestMaterials(id); err != nil {
				return err
			}
			if err := m.BackToWork(id); err != nil {
				return err
			}
		}

		if err := m.PrepareToProduce(id); err != nil {
			return err
		}
		pacer.Pause(s.timing.ProductionMax)
		stored, err := m.StoreProduct(id)
		if err != nil {
			return err
		}
		if full, err := m.ReportBatchIfFull(id, stored); err != nil {
			return err
		} else if full {
			logger.Log(common.LevelDebug, "Batch ready", map[string]interface{}{"stored": stored})
		}
		if err := m.BackToWork(id); err != nil {
			return err
		}
	}
}
