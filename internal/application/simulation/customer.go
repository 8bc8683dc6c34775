package simulation

import (
	"context"

	"github.com/andrescamacho/handicraft-go/internal/adapters/metrics"
	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// RunCustomer is the life cycle of customer id: daily chores, a visit to the
// shop, maybe a purchase, and back again until there is nothing left to buy.
func (s *Simulation) RunCustomer(ctx context.Context, id int) error {
	logger := common.LoggerFromContext(ctx)
	pacer := s.pacerFor(handicraft.RoleCustomer, id)
	limiter := s.doorLimiter()
	m := s.monitor

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		retire, err := m.CustomerShouldRetire(id)
		if err != nil {
			return err
		}
		if retire {
			logger.Log(common.LevelInfo, "Nothing left to buy", nil)
			return nil
		}

		pacer.Pause(s.timing.ChoresMax)
		if err := m.GoShopping(id); err != nil {
			return err
		}
		entered, err := m.EnterShopIfOpen(id)
		if err != nil {
			return err
		}
		if !entered {
			metrics.RecordDoorRetry()
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			continue
		}

		picked, err := m.BrowseAndSelect(id)
		if err != nil {
			return err
		}
		if picked > 0 {
			logger.Log(common.LevelDebug, "Queueing to pay", map[string]interface{}{"pieces": picked})
			if err := m.QueueForCheckout(id, picked); err != nil {
				return err
			}
		}
		if err := m.LeaveShop(id); err != nil {
			return err
		}
	}
}
