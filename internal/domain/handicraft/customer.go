package handicraft

import (
	"fmt"

	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// CustomerShouldRetire decides whether customer id is done. Nobody leaves
// while material can still arrive or be converted; after that a customer
// leaves once there are fewer than two sellable pieces per active customer,
// except the last one, who stays until the pipeline is completely empty.
func (m *Monitor) CustomerShouldRetire(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return false, err
	}
	c, err := m.customer(id)
	if err != nil {
		return false, err
	}
	if !c.Active {
		return true, nil
	}

	st := m.st
	if st.Workshop.MaterialsOnHand != 0 || !st.scheduleExhausted() {
		return false, nil
	}
	active := st.activeCustomers()
	sellable := st.Shop.ProductsOnDisplay + st.Workshop.ProductsInStoreroom
	retire := (sellable < 2*active && active != 1) ||
		sellable+st.unconvertedMaterials() == 0
	if !retire {
		return false, nil
	}

	c.Active = false
	return true, m.record("customer_retire")
}

// GoShopping sends the customer to the shop door
func (m *Monitor) GoShopping(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}
	c, err := m.customer(id)
	if err != nil {
		return err
	}

	c.State = CustomerCheckingDoor
	return m.record("go_shopping")
}

// CheckDoorOpen peeks at the door. The answer can be stale by the time the
// caller acts on it; EnterShopIfOpen is the race-free way in.
func (m *Monitor) CheckDoorOpen() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return false, err
	}
	return m.st.Shop.Status == ShopOpen, nil
}

// EnterShopIfOpen checks the door and walks in within one gate section.
// A customer who finds it shut goes back to their daily chores.
func (m *Monitor) EnterShopIfOpen(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return false, err
	}
	c, err := m.customer(id)
	if err != nil {
		return false, err
	}

	if m.st.Shop.Status != ShopOpen {
		c.State = CustomerIdle
		return false, m.record("door_shut")
	}
	c.State = CustomerBrowsing
	m.st.Shop.CustomersInside++
	return true, m.record("enter_shop")
}

// BrowseAndSelect picks up to two pieces from the display
func (m *Monitor) BrowseAndSelect(id int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return 0, err
	}
	c, err := m.customer(id)
	if err != nil {
		return 0, err
	}

	display := m.st.Shop.ProductsOnDisplay
	if display == 0 {
		return 0, nil
	}
	qty := min(max(m.selector.Select(display), 0), display, 2)
	if qty == 0 {
		return 0, nil
	}
	m.st.Shop.ProductsOnDisplay -= qty
	c.PiecesInHand += qty
	return qty, m.record("browse")
}

// QueueForCheckout pays for the pieces in hand: the customer joins the
// service queue, calls the entrepreneur and waits to be served.
func (m *Monitor) QueueForCheckout(id, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}
	c, err := m.customer(id)
	if err != nil {
		return err
	}
	if qty <= 0 || qty > c.PiecesInHand {
		return shared.NewInvariantError(fmt.Sprintf(
			"customer %d cannot check out %d pieces holding %d", id, qty, c.PiecesInHand))
	}
	if err := m.st.ServiceQueue.Enqueue(id); err != nil {
		return err
	}

	c.State = CustomerBuying
	c.PiecesInHand -= qty
	c.PiecesBought += qty
	m.served[id] = false
	m.attendMe.Signal()
	if err := m.record("queue_for_checkout"); err != nil {
		return err
	}

	for !m.served[id] {
		if err := m.wait(m.serviceReady[id]); err != nil {
			return err
		}
	}
	m.served[id] = false
	return nil
}

// LeaveShop walks the customer out and back to their daily chores
func (m *Monitor) LeaveShop(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}
	c, err := m.customer(id)
	if err != nil {
		return err
	}
	if m.st.Shop.CustomersInside == 0 {
		return shared.NewInvariantError(fmt.Sprintf("customer %d leaving an empty shop", id))
	}

	c.State = CustomerIdle
	m.st.Shop.CustomersInside--
	m.attendMe.Signal()
	return m.record("leave_shop")
}
