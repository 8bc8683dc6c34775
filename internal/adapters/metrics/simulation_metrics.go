package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

// SimulationMetricsCollector exports the shop state and agent events.
// It is a state observer: every snapshot refreshes the gauges and advances
// the flow counters by what changed since the previous one.
type SimulationMetricsCollector struct {
	// State gauges
	productsOnDisplay   prometheus.Gauge
	productsInStoreroom prometheus.Gauge
	materialsOnHand     prometheus.Gauge
	customersInside     prometheus.Gauge
	queueLength         prometheus.Gauge
	blockedCraftsmen    prometheus.Gauge
	activeAgents        *prometheus.GaugeVec

	// Flow counters
	piecesProduced     prometheus.Counter
	piecesSold         prometheus.Counter
	materialsDelivered prometheus.Counter
	snapshots          prometheus.Counter

	// Agent events
	agentTerminations  *prometheus.CounterVec
	agentRuntime       *prometheus.HistogramVec
	entrepreneurEvents *prometheus.CounterVec
	doorRetries        prometheus.Counter

	mu   sync.Mutex
	last handicraft.Snapshot
}

// NewSimulationMetricsCollector creates a new simulation metrics collector
func NewSimulationMetricsCollector() *SimulationMetricsCollector {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
		})
	}

	return &SimulationMetricsCollector{
		productsOnDisplay:   gauge("products_on_display", "Pieces on display in the shop"),
		productsInStoreroom: gauge("products_in_storeroom", "Finished pieces waiting in the storeroom"),
		materialsOnHand:     gauge("materials_on_hand", "Prime material available in the workshop"),
		customersInside:     gauge("customers_inside", "Customers currently inside the shop"),
		queueLength:         gauge("queue_length", "Customers waiting at the counter"),
		blockedCraftsmen:    gauge("blocked_craftsmen", "Craftsmen waiting for a delivery"),
		activeAgents: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "active_agents",
				Help:      "Agents that have not retired yet, by role",
			},
			[]string{"role"},
		),

		piecesProduced:     counter("pieces_produced_total", "Pieces made by craftsmen"),
		piecesSold:         counter("pieces_sold_total", "Pieces bought by customers"),
		materialsDelivered: counter("materials_delivered_total", "Prime material delivered to the workshop"),
		snapshots:          counter("snapshots_total", "State changes observed"),

		agentTerminations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "agent_terminations_total",
				Help:      "Agent terminations by role and final status",
			},
			[]string{"role", "status"},
		),
		agentRuntime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "agent_runtime_seconds",
				Help:      "Time from agent start to termination",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"role"},
		),
		entrepreneurEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "entrepreneur_events_total",
				Help:      "Events the entrepreneur woke up for",
			},
			[]string{"event"},
		),
		doorRetries: counter("door_retries_total", "Times a customer found the door shut"),
	}
}

// Register registers all metrics with the Prometheus registry
func (c *SimulationMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.productsOnDisplay,
		c.productsInStoreroom,
		c.materialsOnHand,
		c.customersInside,
		c.queueLength,
		c.blockedCraftsmen,
		c.activeAgents,
		c.piecesProduced,
		c.piecesSold,
		c.materialsDelivered,
		c.snapshots,
		c.agentTerminations,
		c.agentRuntime,
		c.entrepreneurEvents,
		c.doorRetries,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// Record implements handicraft.StateObserver
func (c *SimulationMetricsCollector) Record(s handicraft.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.productsOnDisplay.Set(float64(s.Shop.ProductsOnDisplay))
	c.productsInStoreroom.Set(float64(s.Workshop.ProductsInStoreroom))
	c.materialsOnHand.Set(float64(s.Workshop.MaterialsOnHand))
	c.customersInside.Set(float64(s.Shop.CustomersInside))
	c.queueLength.Set(float64(len(s.Queue)))
	c.blockedCraftsmen.Set(float64(s.BlockedCraftsmenCount))

	activeCustomers, activeCraftsmen := 0, 0
	for _, cu := range s.Customers {
		if cu.Active {
			activeCustomers++
		}
	}
	for _, cr := range s.Craftsmen {
		if cr.Active {
			activeCraftsmen++
		}
	}
	c.activeAgents.WithLabelValues(string(handicraft.RoleCustomer)).Set(float64(activeCustomers))
	c.activeAgents.WithLabelValues(string(handicraft.RoleCraftsman)).Set(float64(activeCraftsmen))

	if d := s.Workshop.PiecesProducedTotal - c.last.Workshop.PiecesProducedTotal; d > 0 {
		c.piecesProduced.Add(float64(d))
	}
	if d := s.PiecesSold() - c.last.PiecesSold(); d > 0 {
		c.piecesSold.Add(float64(d))
	}
	if d := s.Workshop.MaterialsDeliveredTotal - c.last.Workshop.MaterialsDeliveredTotal; d > 0 {
		c.materialsDelivered.Add(float64(d))
	}
	c.snapshots.Inc()

	c.last = s
	return nil
}

// RecordAgentTermination implements AgentMetricsRecorder
func (c *SimulationMetricsCollector) RecordAgentTermination(role, status string, runtime time.Duration) {
	c.agentTerminations.WithLabelValues(role, status).Inc()
	c.agentRuntime.WithLabelValues(role).Observe(runtime.Seconds())
	if role == string(handicraft.RoleEntrepreneur) {
		c.activeAgents.WithLabelValues(role).Set(0)
	}
}

// RecordEntrepreneurEvent implements AgentMetricsRecorder
func (c *SimulationMetricsCollector) RecordEntrepreneurEvent(event string) {
	c.entrepreneurEvents.WithLabelValues(event).Inc()
}

// RecordDoorRetry implements AgentMetricsRecorder
func (c *SimulationMetricsCollector) RecordDoorRetry() {
	c.doorRetries.Inc()
}

var (
	_ handicraft.StateObserver = (*SimulationMetricsCollector)(nil)
	_ AgentMetricsRecorder     = (*SimulationMetricsCollector)(nil)
)
