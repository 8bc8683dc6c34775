package handicraft

// CraftsmanShouldRetire decides whether craftsman id is done. Once the
// schedule is exhausted a craftsman stays only while there is enough
// material for every active craftsman to make one more piece. The last one
// to leave hands any stored pieces over to the entrepreneur.
func (m *Monitor) CraftsmanShouldRetire(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return false, err
	}
	c, err := m.craftsman(id)
	if err != nil {
		return false, err
	}
	if !c.Active {
		return true, nil
	}

	st := m.st
	if !st.scheduleExhausted() {
		return false, nil
	}
	active := st.activeCraftsmen()
	if st.Workshop.MaterialsOnHand >= active*st.params.PieceSize {
		return false, nil
	}

	c.Active = false
	if active == 1 && st.Workshop.ProductsInStoreroom > 0 {
		st.Shop.BatchReadyFlag = true
		m.attendMe.Signal()
	}
	return true, m.record("craftsman_retire")
}

// FetchMaterials takes one piece worth of material, parking on
// materials-arrived while the workshop is short. The result tells the
// craftsman whether to ask the entrepreneur for a new delivery.
func (m *Monitor) FetchMaterials(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return false, err
	}
	c, err := m.craftsman(id)
	if err != nil {
		return false, err
	}

	st := m.st
	pieceSize := st.params.PieceSize
	for st.Workshop.MaterialsOnHand < pieceSize {
		st.BlockedCraftsmenCount++
		for m.materialPermits == 0 {
			if err := m.wait(m.materialsArrived); err != nil {
				return false, err
			}
		}
		m.materialPermits--
	}

	c.State = CraftsmanFetching
	st.Workshop.MaterialsOnHand -= pieceSize
	c.MaterialsHeld = pieceSize
	needsResupply := st.Workshop.DeliveriesMade <= len(st.params.Schedule) &&
		st.Workshop.MaterialsOnHand <= st.params.LowWaterMark
	return needsResupply, m.record("fetch_materials")
}

// RequestMaterials raises the materials request and calls the entrepreneur
func (m *Monitor) RequestMaterials(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}
	c, err := m.craftsman(id)
	if err != nil {
		return err
	}

	c.State = CraftsmanContacting
	m.st.Shop.MaterialsRequestFlag = true
	m.attendMe.Signal()
	return m.record("request_materials")
}

// BackToWork returns the craftsman to the material shelf
func (m *Monitor) BackToWork(id int) error {
	return m.setCraftsmanState(id, CraftsmanFetching, "back_to_work")
}

// PrepareToProduce starts work on a piece
func (m *Monitor) PrepareToProduce(id int) error {
	return m.setCraftsmanState(id, CraftsmanProducing, "prepare_to_produce")
}

// StoreProduct puts a finished piece in the storeroom and returns how many
// pieces are stored now
func (m *Monitor) StoreProduct(id int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return 0, err
	}
	c, err := m.craftsman(id)
	if err != nil {
		return 0, err
	}

	c.State = CraftsmanStoring
	c.PiecesProduced++
	c.MaterialsHeld = 0
	m.st.Workshop.ProductsInStoreroom++
	m.st.Workshop.PiecesProducedTotal++
	return m.st.Workshop.ProductsInStoreroom, m.record("store_product")
}

// ReportBatchIfFull calls the entrepreneur when the storeroom count returned
// by StoreProduct has reached the storeroom capacity
func (m *Monitor) ReportBatchIfFull(id, stored int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return false, err
	}
	c, err := m.craftsman(id)
	if err != nil {
		return false, err
	}
	if stored < m.st.params.StoreroomCapacity {
		return false, nil
	}

	c.State = CraftsmanContacting
	m.st.Shop.BatchReadyFlag = true
	m.attendMe.Signal()
	return true, m.record("batch_ready")
}

func (m *Monitor) setCraftsmanState(id int, state CraftsmanState, op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}
	c, err := m.craftsman(id)
	if err != nil {
		return err
	}

	c.State = state
	return m.record(op)
}
