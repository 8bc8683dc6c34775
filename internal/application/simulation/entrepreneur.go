package simulation

import (
	"context"
	"fmt"

	"github.com/andrescamacho/handicraft-go/internal/adapters/metrics"
	"github.com/andrescamacho/handicraft-go/internal/application/common"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// RunEntrepreneur is the life cycle of the shop owner. It returns nil once
// the business has wound down.
func (s *Simulation) RunEntrepreneur(ctx context.Context) error {
	logger := common.LoggerFromContext(ctx)
	pacer := s.pacerFor(handicraft.RoleEntrepreneur, 0)
	m := s.monitor

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		retire, err := m.EntrepreneurShouldRetire()
		if err != nil {
			return err
		}
		if retire {
			logger.Log(common.LevelInfo, "Shop closed for good", nil)
			return nil
		}

		if err := m.PrepareToWork(); err != nil {
			return err
		}
		next, err := s.attendShop(ctx, pacer)
		if err != nil {
			return err
		}

		if err := m.PrepareToLeave(); err != nil {
			return err
		}
		switch next {
		case handicraft.EventCollectBatch:
			logger.Log(common.LevelDebug, "Collecting a batch", nil)
			if err := m.CollectBatch(); err != nil {
				return err
			}
		case handicraft.EventGoShopping:
			logger.Log(common.LevelDebug, "Buying prime materials", nil)
			if err := m.DeliverMaterials(); err != nil {
				return err
			}
		}
		if err := m.ReturnToShop(); err != nil {
			return err
		}
	}
}

// attendShop serves customers until something calls the entrepreneur away.
// A call that comes while customers are inside closes the door first and
// waits for the shop to empty.
func (s *Simulation) attendShop(ctx context.Context, pacer *Pacer) (handicraft.Event, error) {
	m := s.monitor
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		event, err := m.AwaitNextEvent()
		if err != nil {
			return 0, err
		}
		metrics.RecordEntrepreneurEvent(event.String())

		switch event {
		case handicraft.EventServe:
			if err := s.serveCustomer(pacer); err != nil {
				return 0, err
			}
		case handicraft.EventStop:
			return event, nil
		default:
			occupied, err := m.CloseDoorIfOccupied()
			if err != nil {
				return 0, err
			}
			if !occupied {
				return event, nil
			}
		}
	}
}

func (s *Simulation) serveCustomer(pacer *Pacer) error {
	id, err := s.monitor.AddressCustomer()
	if err != nil {
		return fmt.Errorf("failed to address customer: %w", err)
	}
	pacer.Pause(s.timing.ServiceMax)
	if err := s.monitor.SayGoodbyeToCustomer(id); err != nil {
		return fmt.Errorf("failed to finish sale to customer %d: %w", id, err)
	}
	return nil
}
