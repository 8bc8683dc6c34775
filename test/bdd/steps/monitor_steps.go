package steps

import (
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

const settle = 2 * time.Second

// Given steps

func (sc *shopContext) theShopIsOpenWithCustomersTaking(pieces int) error {
	sc.history = &history{}
	m, err := handicraft.NewMonitor(sc.params,
		handicraft.WithObserver(sc.history),
		handicraft.WithSelector(fixedSelector(pieces)),
	)
	if err != nil {
		return err
	}
	if err := m.Start(); err != nil {
		return err
	}
	sc.monitor = m
	return m.PrepareToWork()
}

// craftsmanMakesPieces runs the production cycle of one craftsman n times
func (sc *shopContext) craftsmanMakesPieces(id, n int) error {
	for range n {
		if _, err := sc.monitor.FetchMaterials(id); err != nil {
			return err
		}
		if err := sc.monitor.PrepareToProduce(id); err != nil {
			return err
		}
		if _, err := sc.monitor.StoreProduct(id); err != nil {
			return err
		}
		if err := sc.monitor.BackToWork(id); err != nil {
			return err
		}
	}
	return nil
}

func (sc *shopContext) craftsmanHasUsedUpThePrimeMaterial(id int) error {
	s := sc.monitor.Snapshot()
	return sc.craftsmanMakesPieces(id, s.Workshop.MaterialsOnHand/s.PieceSize)
}

func (sc *shopContext) piecesAreOnDisplay(n int) error {
	if err := sc.craftsmanMakesPieces(0, n); err != nil {
		return err
	}
	if err := sc.monitor.CollectBatch(); err != nil {
		return err
	}
	if err := sc.monitor.ReturnToShop(); err != nil {
		return err
	}
	if got := sc.monitor.Snapshot().Shop.ProductsOnDisplay; got != n {
		return fmt.Errorf("expected %d pieces on display, got %d", n, got)
	}
	return nil
}

// When steps

func (sc *shopContext) craftsmenWaitForPrimeMaterial(list string) error {
	ids, err := parseInts(list)
	if err != nil {
		return err
	}
	for _, id := range ids {
		done := make(chan error, 1)
		sc.returned[id] = done
		go func() {
			_, err := sc.monitor.FetchMaterials(id)
			done <- err
		}()
	}
	if !waitFor(settle, func() bool {
		return sc.monitor.Snapshot().BlockedCraftsmenCount == len(ids)
	}) {
		return fmt.Errorf("expected %d blocked craftsmen, got %d", len(ids), sc.monitor.Snapshot().BlockedCraftsmenCount)
	}
	return nil
}

func (sc *shopContext) theEntrepreneurDeliversMaterials() error {
	return sc.monitor.DeliverMaterials()
}

func (sc *shopContext) customersQueueForCheckoutInOrder(list string) error {
	ids, err := parseInts(list)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := sc.monitor.GoShopping(id); err != nil {
			return err
		}
		in, err := sc.monitor.EnterShopIfOpen(id)
		if err != nil {
			return err
		}
		if !in {
			return fmt.Errorf("customer %d found the door shut", id)
		}
		qty, err := sc.monitor.BrowseAndSelect(id)
		if err != nil {
			return err
		}
		if qty == 0 {
			return fmt.Errorf("customer %d picked nothing", id)
		}

		done := make(chan error, 1)
		sc.returned[id] = done
		go func() {
			done <- sc.monitor.QueueForCheckout(id, qty)
		}()
		// one at a time, so the queue order is the order given
		if !waitFor(settle, func() bool {
			q := sc.monitor.Snapshot().Queue
			return len(q) > 0 && q[len(q)-1] == id
		}) {
			return fmt.Errorf("customer %d never joined the queue", id)
		}
	}
	return nil
}

func (sc *shopContext) customerIsBrowsingInTheShop(id int) error {
	if err := sc.monitor.GoShopping(id); err != nil {
		return err
	}
	in, err := sc.monitor.EnterShopIfOpen(id)
	if err != nil {
		return err
	}
	if !in {
		return fmt.Errorf("customer %d found the door shut", id)
	}
	return nil
}

func (sc *shopContext) theEntrepreneurClosesTheDoor() error {
	occupied, err := sc.monitor.CloseDoorIfOccupied()
	if err != nil {
		return err
	}
	if !occupied {
		return fmt.Errorf("expected customers inside the shop")
	}
	return nil
}

// Then steps

func (sc *shopContext) waitingCraftsmenResume(n int) error {
	resumed := 0
	deadline := time.After(settle)
	for _, done := range sc.returned {
		select {
		case err := <-done:
			if err != nil {
				return err
			}
			resumed++
		case <-deadline:
			return fmt.Errorf("only %d of %d craftsmen resumed", resumed, n)
		}
	}
	if resumed != n {
		return fmt.Errorf("expected %d craftsmen to resume, %d did", n, resumed)
	}
	return nil
}

func (sc *shopContext) noCraftsmanIsBlocked() error {
	if blocked := sc.monitor.Snapshot().BlockedCraftsmenCount; blocked != 0 {
		return fmt.Errorf("%d craftsmen still counted as blocked", blocked)
	}
	return nil
}

func (sc *shopContext) theEntrepreneurServesCustomersInOrder(list string) error {
	ids, err := parseInts(list)
	if err != nil {
		return err
	}
	for _, want := range ids {
		ev, err := sc.monitor.AwaitNextEvent()
		if err != nil {
			return err
		}
		if ev != handicraft.EventServe {
			return fmt.Errorf("expected a customer to serve, got %s", ev)
		}
		got, err := sc.monitor.AddressCustomer()
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("expected to serve customer %d, served %d", want, got)
		}
		if err := sc.monitor.SayGoodbyeToCustomer(got); err != nil {
			return err
		}
		select {
		case err := <-sc.returned[got]:
			if err != nil {
				return err
			}
		case <-time.After(settle):
			return fmt.Errorf("customer %d was not released after being served", got)
		}
	}
	return nil
}

func (sc *shopContext) theServiceQueueIsEmpty() error {
	if q := sc.monitor.Snapshot().Queue; len(q) != 0 {
		return fmt.Errorf("queue still holds %v", q)
	}
	return nil
}

func (sc *shopContext) customerIsTurnedAwayAtTheDoor(id int) error {
	if err := sc.monitor.GoShopping(id); err != nil {
		return err
	}
	in, err := sc.monitor.EnterShopIfOpen(id)
	if err != nil {
		return err
	}
	if in {
		return fmt.Errorf("customer %d walked into a closed shop", id)
	}
	return nil
}

func (sc *shopContext) theMaterialsRequestWaitsUntilTheShopIsEmpty(id int) error {
	if err := sc.monitor.RequestMaterials(0); err != nil {
		return err
	}

	events := make(chan handicraft.Event, 1)
	go func() {
		ev, err := sc.monitor.AwaitNextEvent()
		if err == nil {
			events <- ev
		}
	}()

	select {
	case ev := <-events:
		return fmt.Errorf("entrepreneur left with a customer inside to handle %s", ev)
	case <-time.After(50 * time.Millisecond):
	}

	if err := sc.monitor.LeaveShop(id); err != nil {
		return err
	}
	select {
	case ev := <-events:
		if ev != handicraft.EventGoShopping {
			return fmt.Errorf("expected the materials request, got %s", ev)
		}
		return nil
	case <-time.After(settle):
		return fmt.Errorf("entrepreneur never woke up after the shop emptied")
	}
}

func (sc *shopContext) everyRecordedStateSatisfiesTheInvariants() error {
	sc.history.mu.Lock()
	defer sc.history.mu.Unlock()
	if len(sc.history.violations) > 0 {
		return sc.history.violations[0]
	}
	return nil
}

func registerMonitorSteps(ctx *godog.ScenarioContext, sc *shopContext) {
	// Given steps
	ctx.Step(`^the shop is open and every customer takes (\d+) pieces? at a time$`, sc.theShopIsOpenWithCustomersTaking)
	ctx.Step(`^craftsman (\d+) has used up the prime material$`, sc.craftsmanHasUsedUpThePrimeMaterial)
	ctx.Step(`^(\d+) pieces are on display$`, sc.piecesAreOnDisplay)

	// When steps
	ctx.Step(`^craftsmen ([\d, and]+) wait for prime material$`, sc.craftsmenWaitForPrimeMaterial)
	ctx.Step(`^the entrepreneur delivers materials$`, sc.theEntrepreneurDeliversMaterials)
	ctx.Step(`^customers? ([\d, and]+) queues? for checkout in that order$`, sc.customersQueueForCheckoutInOrder)
	ctx.Step(`^customer (\d+) is browsing in the shop$`, sc.customerIsBrowsingInTheShop)
	ctx.Step(`^the entrepreneur closes the door$`, sc.theEntrepreneurClosesTheDoor)

	// Then steps
	ctx.Step(`^all (\d+) waiting craftsmen resume$`, sc.waitingCraftsmenResume)
	ctx.Step(`^no craftsman is counted as blocked$`, sc.noCraftsmanIsBlocked)
	ctx.Step(`^the entrepreneur serves customers ([\d, and]+) in that order$`, sc.theEntrepreneurServesCustomersInOrder)
	ctx.Step(`^the service queue is empty$`, sc.theServiceQueueIsEmpty)
	ctx.Step(`^customer (\d+) is turned away at the door$`, sc.customerIsTurnedAwayAtTheDoor)
	ctx.Step(`^a materials request waits until customer (\d+) has left$`, sc.theMaterialsRequestWaitsUntilTheShopIsEmpty)
	ctx.Step(`^every recorded state satisfies the invariants$`, sc.everyRecordedStateSatisfiesTheInvariants)
}
