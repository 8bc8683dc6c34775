package simulation

import (
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// Timing holds the bounded random pauses of the agents and the pace at which
// a customer comes back to a shut door
type Timing struct {
	Unit               time.Duration
	ServiceMax         int
	ProductionMax      int
	ChoresMax          int
	DoorRetryPerSecond float64
	DoorRetryBurst     int
}

// DefaultTiming mirrors the pauses the shop has always used: up to 20 units
// serving, 30 producing and 40 on daily chores, one unit being a microsecond
func DefaultTiming() Timing {
	return Timing{
		Unit:               time.Microsecond,
		ServiceMax:         20,
		ProductionMax:      30,
		ChoresMax:          40,
		DoorRetryPerSecond: 20000,
		DoorRetryBurst:     1,
	}
}

// Random streams derived from the run seed. Every agent draws from its own
// stream so a seed reproduces the same per-agent pauses.
const (
	StreamSchedule uint64 = 1
	StreamSelector uint64 = 2
	streamAgents   uint64 = 1 << 16
)

// Rand returns the generator of one stream of a run
func Rand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// NewSelector is the customers' piece selection for a run
func NewSelector(seed uint64) *handicraft.WeightedSelector {
	return handicraft.NewWeightedSelector(Rand(seed, StreamSelector))
}

func agentStream(role handicraft.Role, index, customers int) uint64 {
	switch role {
	case handicraft.RoleEntrepreneur:
		return streamAgents
	case handicraft.RoleCustomer:
		return streamAgents + 1 + uint64(index)
	default:
		return streamAgents + 1 + uint64(customers) + uint64(index)
	}
}

// Pacer produces the random pauses of one agent
type Pacer struct {
	rnd   *rand.Rand
	clock shared.Clock
	unit  time.Duration
}

func NewPacer(rnd *rand.Rand, clock shared.Clock, unit time.Duration) *Pacer {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Pacer{rnd: rnd, clock: clock, unit: unit}
}

// Units draws a pause length in [1, max+1]
func (p *Pacer) Units(max int) int {
	return int(math.Floor(float64(max)*p.rnd.Float64() + 1.5))
}

// Pause sleeps for a random number of units bounded by max. With a zero
// unit it only yields the processor.
func (p *Pacer) Pause(max int) {
	units := p.Units(max)
	if p.unit <= 0 {
		runtime.Gosched()
		return
	}
	p.clock.Sleep(time.Duration(units) * p.unit)
}
