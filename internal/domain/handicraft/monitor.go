package handicraft

import (
	"math/rand/v2"
	"sync"

	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// StateObserver receives a copy of the shared state after every mutation.
// Record runs synchronously while the gate is held, so the sequence it sees
// is a consistent history; an error is treated as a gate failure.
type StateObserver interface {
	Record(snapshot Snapshot) error
}

// ObserverFunc adapts a plain function to StateObserver
type ObserverFunc func(snapshot Snapshot) error

func (f ObserverFunc) Record(snapshot Snapshot) error {
	return f(snapshot)
}

// Selector decides how many pieces a browsing customer takes, given how many
// are on display. Called with the gate held.
type Selector interface {
	Select(available int) int
}

// WeightedSelector takes nothing 30% of the time, one piece 40% of the time
// and two pieces otherwise, never more than what is on display.
type WeightedSelector struct {
	rnd *rand.Rand
}

func NewWeightedSelector(rnd *rand.Rand) *WeightedSelector {
	return &WeightedSelector{rnd: rnd}
}

func (s *WeightedSelector) Select(available int) int {
	val := s.rnd.Float64()
	switch {
	case val < 0.3 || available == 0:
		return 0
	case val < 0.7 || available == 1:
		return 1
	default:
		return 2
	}
}

// Monitor is the gate around SharedState plus the three wake-up signals
// built on it:
//   - attend-me: observed by the entrepreneur, raised by anyone who needs them
//   - service-ready: one per customer, raised by the entrepreneur
//   - materials-arrived: shared by blocked craftsmen, raised on delivery
//
// Every exported method acquires the gate, performs its mutation, reports
// the new state to the observers and releases the gate on every path.
// Blocking methods wait on a sync.Cond, which releases the gate while
// parked, and re-check their predicate after every wake-up.
type Monitor struct {
	mu sync.Mutex
	st *SharedState

	attendMe         *sync.Cond
	serviceReady     []*sync.Cond
	served           []bool
	materialsArrived *sync.Cond
	materialPermits  int

	observers []StateObserver
	selector  Selector
	seq       uint64
	aborted   error
}

// MonitorOption configures a Monitor
type MonitorOption func(*Monitor)

// WithObserver adds an observer; observers run in registration order
func WithObserver(o StateObserver) MonitorOption {
	return func(m *Monitor) {
		m.observers = append(m.observers, o)
	}
}

// WithSelector replaces the customers' piece selection policy
func WithSelector(s Selector) MonitorOption {
	return func(m *Monitor) {
		m.selector = s
	}
}

// NewMonitor builds the shared state for a run and the signals around it
func NewMonitor(params Parameters, opts ...MonitorOption) (*Monitor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		st:           NewSharedState(params),
		serviceReady: make([]*sync.Cond, params.Customers),
		served:       make([]bool, params.Customers),
	}
	m.attendMe = sync.NewCond(&m.mu)
	m.materialsArrived = sync.NewCond(&m.mu)
	for i := range m.serviceReady {
		m.serviceReady[i] = sync.NewCond(&m.mu)
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.selector == nil {
		m.selector = NewWeightedSelector(rand.New(rand.NewPCG(1, 2)))
	}
	return m, nil
}

// Params returns the run parameters
func (m *Monitor) Params() Parameters {
	return m.st.Params()
}

// Start reports the initial state to the observers
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.usable(); err != nil {
		return err
	}
	return m.record("start")
}

// Snapshot returns the current state without reporting it
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.Snapshot(m.seq)
}

// Abort breaks the run: every parked agent wakes up and every later gate
// operation fails with shared.ErrSimulationAborted. The first cause wins.
func (m *Monitor) Abort(cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.aborted != nil {
		return
	}
	if cause == nil {
		cause = shared.ErrSimulationAborted
	}
	m.aborted = cause
	m.attendMe.Broadcast()
	m.materialsArrived.Broadcast()
	for _, c := range m.serviceReady {
		c.Broadcast()
	}
}

// Aborted returns the abort cause, if any
func (m *Monitor) Aborted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aborted
}

// usable must be called with the gate held
func (m *Monitor) usable() error {
	if m.aborted != nil {
		return shared.ErrSimulationAborted
	}
	return nil
}

// wait parks on c, giving up the gate, and fails if the run was aborted meanwhile
func (m *Monitor) wait(c *sync.Cond) error {
	c.Wait()
	return m.usable()
}

// record hands the post-mutation state to every observer
func (m *Monitor) record(op string) error {
	m.seq++
	snap := m.st.Snapshot(m.seq)
	for _, o := range m.observers {
		if err := o.Record(snap); err != nil {
			return shared.NewGateError(op, err)
		}
	}
	return nil
}

func (m *Monitor) customer(id int) (*CustomerStatus, error) {
	if id < 0 || id >= len(m.st.Customers) {
		return nil, shared.NewInvalidAgentIDError(string(RoleCustomer), id, len(m.st.Customers))
	}
	return &m.st.Customers[id], nil
}

func (m *Monitor) craftsman(id int) (*CraftsmanStatus, error) {
	if id < 0 || id >= len(m.st.Craftsmen) {
		return nil, shared.NewInvalidAgentIDError(string(RoleCraftsman), id, len(m.st.Craftsmen))
	}
	return &m.st.Craftsmen[id], nil
}

// grantMaterialPermits releases n parked craftsmen. Gate held.
func (m *Monitor) grantMaterialPermits(n int) {
	m.materialPermits += n
	for i := 0; i < n; i++ {
		m.materialsArrived.Signal()
	}
}
