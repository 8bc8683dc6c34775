package handicraft

// CustomerStatus is one customer's slot in the shared state
type CustomerStatus struct {
	State        CustomerState `json:"state"`
	PiecesBought int           `json:"pieces_bought"`
	PiecesInHand int           `json:"pieces_in_hand"`
	Active       bool          `json:"active"`
}

// CraftsmanStatus is one craftsman's slot in the shared state
type CraftsmanStatus struct {
	State          CraftsmanState `json:"state"`
	PiecesProduced int            `json:"pieces_produced"`
	MaterialsHeld  int            `json:"materials_held"`
	Active         bool           `json:"active"`
}

// Shop is the front of the business
type Shop struct {
	Status               ShopStatus `json:"status"`
	CustomersInside      int        `json:"customers_inside"`
	ProductsOnDisplay    int        `json:"products_on_display"`
	BatchReadyFlag       bool       `json:"batch_ready"`
	MaterialsRequestFlag bool       `json:"materials_requested"`
}

// Workshop is where craftsmen turn prime material into pieces
type Workshop struct {
	MaterialsOnHand         int `json:"materials_on_hand"`
	ProductsInStoreroom     int `json:"products_in_storeroom"`
	DeliveriesMade          int `json:"deliveries_made"`
	MaterialsDeliveredTotal int `json:"materials_delivered_total"`
	PiecesProducedTotal     int `json:"pieces_produced_total"`
}

// SharedState is the full state of one run. It has no locking of its own:
// Monitor is the only owner and mutates it while holding the gate.
type SharedState struct {
	Entrepreneur          EntrepreneurState
	Customers             []CustomerStatus
	Craftsmen             []CraftsmanStatus
	Shop                  Shop
	ServiceQueue          WaitingQueue
	Workshop              Workshop
	BlockedCraftsmenCount int

	params Parameters
}

// NewSharedState builds the initial state of a run: everyone active, queue
// empty, shop closed and the first delivery already in the workshop.
func NewSharedState(params Parameters) *SharedState {
	st := &SharedState{
		Entrepreneur: EntrepreneurOpening,
		Customers:    make([]CustomerStatus, params.Customers),
		Craftsmen:    make([]CraftsmanStatus, params.Craftsmen),
		Shop:         Shop{Status: ShopClosed},
		ServiceQueue: NewWaitingQueue(params.Customers),
		params:       params,
	}
	for i := range st.Customers {
		st.Customers[i] = CustomerStatus{State: CustomerIdle, Active: true}
	}
	for i := range st.Craftsmen {
		st.Craftsmen[i] = CraftsmanStatus{State: CraftsmanFetching, Active: true}
	}
	if len(params.Schedule) > 0 {
		st.Workshop.MaterialsOnHand = params.Schedule[0]
		st.Workshop.MaterialsDeliveredTotal = params.Schedule[0]
		st.Workshop.DeliveriesMade = 1
	}
	return st
}

// Params returns the parameters the state was built with
func (s *SharedState) Params() Parameters {
	return s.params
}

func (s *SharedState) scheduleExhausted() bool {
	return s.Workshop.DeliveriesMade == len(s.params.Schedule)
}

func (s *SharedState) activeCustomers() int {
	n := 0
	for _, c := range s.Customers {
		if c.Active {
			n++
		}
	}
	return n
}

func (s *SharedState) activeCraftsmen() int {
	n := 0
	for _, c := range s.Craftsmen {
		if c.Active {
			n++
		}
	}
	return n
}

// unconvertedMaterials is material delivered but not yet turned into pieces,
// including the share a craftsman is holding while producing.
func (s *SharedState) unconvertedMaterials() int {
	return s.Workshop.MaterialsDeliveredTotal - s.params.PieceSize*s.Workshop.PiecesProducedTotal
}

// entrepreneurMayRetire is the shop owner's retirement predicate
func (s *SharedState) entrepreneurMayRetire() bool {
	return s.Shop.CustomersInside == 0 &&
		s.Shop.ProductsOnDisplay == 0 &&
		!s.Shop.MaterialsRequestFlag &&
		!s.Shop.BatchReadyFlag &&
		s.Workshop.ProductsInStoreroom == 0 &&
		s.Workshop.MaterialsOnHand == 0 &&
		s.scheduleExhausted() &&
		s.unconvertedMaterials() == 0
}

// Snapshot is a point-in-time copy of the shared state, safe to keep after
// the gate is released.
type Snapshot struct {
	Seq                   uint64            `json:"seq"`
	Entrepreneur          EntrepreneurState `json:"entrepreneur"`
	Customers             []CustomerStatus  `json:"customers"`
	Craftsmen             []CraftsmanStatus `json:"craftsmen"`
	Shop                  Shop              `json:"shop"`
	Queue                 []int             `json:"queue"`
	Workshop              Workshop          `json:"workshop"`
	BlockedCraftsmenCount int               `json:"blocked_craftsmen"`
	PieceSize             int               `json:"piece_size"`
	DeliveryCount         int               `json:"delivery_count"`
	QueueCapacity         int               `json:"queue_capacity"`
}

// Snapshot deep-copies the state. Callers hold the gate.
func (s *SharedState) Snapshot(seq uint64) Snapshot {
	snap := Snapshot{
		Seq:                   seq,
		Entrepreneur:          s.Entrepreneur,
		Customers:             make([]CustomerStatus, len(s.Customers)),
		Craftsmen:             make([]CraftsmanStatus, len(s.Craftsmen)),
		Shop:                  s.Shop,
		Queue:                 s.ServiceQueue.Items(),
		Workshop:              s.Workshop,
		BlockedCraftsmenCount: s.BlockedCraftsmenCount,
		PieceSize:             s.params.PieceSize,
		DeliveryCount:         len(s.params.Schedule),
		QueueCapacity:         s.ServiceQueue.Cap(),
	}
	copy(snap.Customers, s.Customers)
	copy(snap.Craftsmen, s.Craftsmen)
	return snap
}

// PiecesSold sums every customer's bought pieces
func (s Snapshot) PiecesSold() int {
	total := 0
	for _, c := range s.Customers {
		total += c.PiecesBought
	}
	return total
}

// MaterialsHeld sums material taken by craftsmen for pieces not stored yet
func (s Snapshot) MaterialsHeld() int {
	total := 0
	for _, c := range s.Craftsmen {
		total += c.MaterialsHeld
	}
	return total
}

// PiecesInHand sums pieces picked from the display but not yet paid for
func (s Snapshot) PiecesInHand() int {
	total := 0
	for _, c := range s.Customers {
		total += c.PiecesInHand
	}
	return total
}
