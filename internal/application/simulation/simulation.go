package simulation

import (
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
	"github.com/andrescamacho/handicraft-go/internal/domain/shared"
)

// Simulation drives one run: the agents share the monitor and nothing else.
type Simulation struct {
	monitor *handicraft.Monitor
	params  handicraft.Parameters
	timing  Timing
	clock   shared.Clock
	seed    uint64
	loggers LoggerFactory
}

// Option configures a Simulation
type Option func(*Simulation)

// WithTiming replaces the default pauses
func WithTiming(t Timing) Option {
	return func(s *Simulation) {
		s.timing = t
	}
}

// WithClock sets the clock pauses and lifecycles go through
func WithClock(c shared.Clock) Option {
	return func(s *Simulation) {
		s.clock = c
	}
}

// WithSeed sets the seed of every agent's random stream
func WithSeed(seed uint64) Option {
	return func(s *Simulation) {
		s.seed = seed
	}
}

// WithLoggerFactory gives every agent its own logger when run through Run
func WithLoggerFactory(f LoggerFactory) Option {
	return func(s *Simulation) {
		s.loggers = f
	}
}

// New builds a simulation around an already configured monitor
func New(monitor *handicraft.Monitor, opts ...Option) *Simulation {
	s := &Simulation{
		monitor: monitor,
		params:  monitor.Params(),
		timing:  DefaultTiming(),
		clock:   shared.NewRealClock(),
		seed:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Monitor returns the shared state of the run
func (s *Simulation) Monitor() *handicraft.Monitor {
	return s.monitor
}

func (s *Simulation) pacerFor(role handicraft.Role, index int) *Pacer {
	rnd := Rand(s.seed, agentStream(role, index, s.params.Customers))
	return NewPacer(rnd, s.clock, s.timing.Unit)
}

func (s *Simulation) doorLimiter() *rate.Limiter {
	limit := rate.Limit(s.timing.DoorRetryPerSecond)
	if s.timing.DoorRetryPerSecond <= 0 || math.IsInf(s.timing.DoorRetryPerSecond, 1) {
		limit = rate.Inf
	}
	burst := s.timing.DoorRetryBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(limit, burst)
}

// AgentName is the short column name an agent goes by in logs
func AgentName(role handicraft.Role, index int) string {
	switch role {
	case handicraft.RoleEntrepreneur:
		return "ENTREPRE"
	case handicraft.RoleCustomer:
		return fmt.Sprintf("CUST_%d", index)
	default:
		return fmt.Sprintf("CRAFT_%d", index)
	}
}
