package handicraft

// Entrepreneur operations. There is exactly one entrepreneur per run, so
// none of these take an id.

// PrepareToWork opens the shop and puts the entrepreneur behind the counter
func (m *Monitor) PrepareToWork() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}

	m.st.Entrepreneur = EntrepreneurWaitingForTask
	m.st.Shop.Status = ShopOpen
	return m.record("prepare_to_work")
}

// AwaitNextEvent blocks on attend-me until there is something to do and
// returns it. Priorities, highest first: a waiting customer, a materials
// request, a ready batch, retirement. While the door is closed with
// customers still inside only serving is considered, so the entrepreneur
// stays in the shop until it empties.
func (m *Monitor) AwaitNextEvent() (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return 0, err
	}

	for {
		st := m.st
		switch {
		case !st.ServiceQueue.IsEmpty():
			return EventServe, nil
		case st.Shop.Status == ShopDoorClosed && st.Shop.CustomersInside > 0:
		case st.Shop.MaterialsRequestFlag:
			return EventGoShopping, nil
		case st.Shop.BatchReadyFlag:
			return EventCollectBatch, nil
		case st.entrepreneurMayRetire():
			return EventStop, nil
		}
		if err := m.wait(m.attendMe); err != nil {
			return 0, err
		}
	}
}

// AddressCustomer takes the customer at the head of the queue
func (m *Monitor) AddressCustomer() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return 0, err
	}

	id, err := m.st.ServiceQueue.Dequeue()
	if err != nil {
		return 0, err
	}
	if _, err := m.customer(id); err != nil {
		return 0, err
	}
	m.st.Entrepreneur = EntrepreneurAttendingCustomer
	return id, m.record("address_customer")
}

// SayGoodbyeToCustomer finishes a sale and releases the customer waiting on
// their service-ready signal
func (m *Monitor) SayGoodbyeToCustomer(customerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}
	if _, err := m.customer(customerID); err != nil {
		return err
	}

	m.st.Entrepreneur = EntrepreneurWaitingForTask
	m.served[customerID] = true
	m.serviceReady[customerID].Signal()
	return m.record("say_goodbye")
}

// CloseDoorIfOccupied is the first step of leaving the shop. With customers
// inside, the door is closed to newcomers and true is returned: the
// entrepreneur must keep serving until they are gone. Otherwise the shop is
// closed outright and false is returned.
func (m *Monitor) CloseDoorIfOccupied() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return false, err
	}

	if m.st.Shop.CustomersInside > 0 {
		m.st.Shop.Status = ShopDoorClosed
		return true, m.record("close_door")
	}
	m.st.Entrepreneur = EntrepreneurClosing
	m.st.Shop.Status = ShopClosed
	return false, m.record("close_door")
}

// PrepareToLeave closes the shop for good at the end of the working day
func (m *Monitor) PrepareToLeave() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}

	m.st.Entrepreneur = EntrepreneurClosing
	m.st.Shop.Status = ShopClosed
	return m.record("prepare_to_leave")
}

// CollectBatch moves the whole storeroom onto the display
func (m *Monitor) CollectBatch() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}

	m.st.Entrepreneur = EntrepreneurCollectingBatch
	m.st.Shop.ProductsOnDisplay += m.st.Workshop.ProductsInStoreroom
	m.st.Workshop.ProductsInStoreroom = 0
	m.st.Shop.BatchReadyFlag = false
	return m.record("collect_batch")
}

// DeliverMaterials applies the next scheduled delivery, if any is left, and
// wakes exactly as many craftsmen as were blocked waiting for it
func (m *Monitor) DeliverMaterials() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}

	m.st.Entrepreneur = EntrepreneurDeliveringMaterials
	m.st.Shop.MaterialsRequestFlag = false
	ws := &m.st.Workshop
	if schedule := m.st.params.Schedule; ws.DeliveriesMade < len(schedule) {
		qty := schedule[ws.DeliveriesMade]
		ws.MaterialsOnHand += qty
		ws.MaterialsDeliveredTotal += qty
		ws.DeliveriesMade++
	}
	m.grantMaterialPermits(m.st.BlockedCraftsmenCount)
	m.st.BlockedCraftsmenCount = 0
	return m.record("deliver_materials")
}

// ReturnToShop puts the entrepreneur back in front of the shop
func (m *Monitor) ReturnToShop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}

	m.st.Entrepreneur = EntrepreneurOpening
	return m.record("return_to_shop")
}

// EntrepreneurShouldRetire reports whether the whole business has wound down
func (m *Monitor) EntrepreneurShouldRetire() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return false, err
	}
	return m.st.entrepreneurMayRetire(), nil
}
