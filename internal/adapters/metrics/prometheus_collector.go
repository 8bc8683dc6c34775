package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "handicraft"
	// Subsystem for simulation metrics
	subsystem = "simulation"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalCollector is the singleton simulation metrics collector
	// Set by SetGlobalCollector() when metrics are enabled
	globalCollector AgentMetricsRecorder
)

// AgentMetricsRecorder defines the interface for recording agent events.
// Application code records through the package-level functions below.
type AgentMetricsRecorder interface {
	RecordAgentTermination(role, status string, runtime time.Duration)
	RecordEntrepreneurEvent(event string)
	RecordDoorRetry()
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalCollector sets the global metrics collector
func SetGlobalCollector(collector AgentMetricsRecorder) {
	globalCollector = collector
}

// RecordAgentTermination records how an agent ended
func RecordAgentTermination(role, status string, runtime time.Duration) {
	if globalCollector != nil {
		globalCollector.RecordAgentTermination(role, status, runtime)
	}
}

// RecordEntrepreneurEvent records an event the entrepreneur woke up for
func RecordEntrepreneurEvent(event string) {
	if globalCollector != nil {
		globalCollector.RecordEntrepreneurEvent(event)
	}
}

// RecordDoorRetry records a customer finding the shop door shut
func RecordDoorRetry() {
	if globalCollector != nil {
		globalCollector.RecordDoorRetry()
	}
}
