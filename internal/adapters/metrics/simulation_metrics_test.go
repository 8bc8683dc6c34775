package metrics_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/adapters/metrics"
	"github.com/andrescamacho/handicraft-go/internal/domain/handicraft"
)

func snapshot(produced, sold, delivered int) handicraft.Snapshot {
	return handicraft.Snapshot{
		Customers: []handicraft.CustomerStatus{{PiecesBought: sold, Active: true}, {Active: false}},
		Craftsmen: []handicraft.CraftsmanStatus{{Active: true}},
		Shop:      handicraft.Shop{ProductsOnDisplay: 2, CustomersInside: 1},
		Queue:     []int{0},
		Workshop: handicraft.Workshop{
			MaterialsOnHand:         3,
			PiecesProducedTotal:     produced,
			MaterialsDeliveredTotal: delivered,
		},
	}
}

func TestSimulationMetricsCollector_Record(t *testing.T) {
	// Arrange
	metrics.InitRegistry()
	collector := metrics.NewSimulationMetricsCollector()
	require.NoError(t, collector.Register())

	// Act
	require.NoError(t, collector.Record(snapshot(0, 0, 5)))
	require.NoError(t, collector.Record(snapshot(2, 1, 5)))
	require.NoError(t, collector.Record(snapshot(3, 1, 11)))

	// Assert
	count, err := testutil.GatherAndCount(metrics.Registry, "handicraft_simulation_pieces_produced_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP handicraft_simulation_pieces_produced_total Pieces made by craftsmen
# TYPE handicraft_simulation_pieces_produced_total counter
handicraft_simulation_pieces_produced_total 3
# HELP handicraft_simulation_pieces_sold_total Pieces bought by customers
# TYPE handicraft_simulation_pieces_sold_total counter
handicraft_simulation_pieces_sold_total 1
# HELP handicraft_simulation_materials_delivered_total Prime material delivered to the workshop
# TYPE handicraft_simulation_materials_delivered_total counter
handicraft_simulation_materials_delivered_total 11
# HELP handicraft_simulation_queue_length Customers waiting at the counter
# TYPE handicraft_simulation_queue_length gauge
handicraft_simulation_queue_length 1
`
	err = testutil.GatherAndCompare(metrics.Registry, strings.NewReader(expected),
		"handicraft_simulation_pieces_produced_total",
		"handicraft_simulation_pieces_sold_total",
		"handicraft_simulation_materials_delivered_total",
		"handicraft_simulation_queue_length",
	)
	assert.NoError(t, err)
}

func TestGlobalRecorders(t *testing.T) {
	// Arrange
	metrics.InitRegistry()
	collector := metrics.NewSimulationMetricsCollector()
	require.NoError(t, collector.Register())
	metrics.SetGlobalCollector(collector)
	t.Cleanup(func() { metrics.SetGlobalCollector(nil) })

	// Act
	metrics.RecordAgentTermination("customer", "RETIRED", 10*time.Millisecond)
	metrics.RecordAgentTermination("customer", "RETIRED", 20*time.Millisecond)
	metrics.RecordAgentTermination("craftsman", "FAILED", time.Millisecond)
	metrics.RecordEntrepreneurEvent("serve")
	metrics.RecordDoorRetry()

	// Assert
	count, err := testutil.GatherAndCount(metrics.Registry,
		"handicraft_simulation_agent_terminations_total",
		"handicraft_simulation_entrepreneur_events_total",
		"handicraft_simulation_door_retries_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestGlobalRecorders_NoCollector(t *testing.T) {
	metrics.SetGlobalCollector(nil)

	assert.NotPanics(t, func() {
		metrics.RecordAgentTermination("customer", "RETIRED", time.Millisecond)
		metrics.RecordEntrepreneurEvent("stop")
		metrics.RecordDoorRetry()
	})
}

func TestServer_ServesRegistry(t *testing.T) {
	// Arrange
	metrics.InitRegistry()
	collector := metrics.NewSimulationMetricsCollector()
	require.NoError(t, collector.Register())
	require.NoError(t, collector.Record(snapshot(1, 0, 5)))

	srv, err := metrics.NewServer("127.0.0.1", 0, "/metrics")
	require.NoError(t, err)
	srv.Start()
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	// Act
	resp, err := http.Get("http://" + srv.Addr() + "/metrics")

	// Assert
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "handicraft_simulation_pieces_produced_total 1")
}
