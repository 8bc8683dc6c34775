package config_test

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/handicraft-go/internal/infrastructure/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handicraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, "logging:\n  level: info\n")

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Simulation.Customers)
	assert.Equal(t, 3, cfg.Simulation.Craftsmen)
	assert.Equal(t, 4, cfg.Simulation.StoreroomCapacity)
	assert.Equal(t, 2, cfg.Simulation.LowWaterMark)
	assert.Equal(t, 1, cfg.Simulation.PieceSize)
	assert.Equal(t, 4, cfg.Simulation.Deliveries)
	assert.Equal(t, time.Microsecond, cfg.Timing.Unit)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "handicraft.log", cfg.StateLog.File)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
simulation:
  customers: 5
  craftsmen: 2
  schedule: [5, 5, 5, 6]
  seed: 42
timing:
  unit: 0s
  door_retry_per_second: 100
statelog:
  file: run.log
  force: true
logging:
  format: json
`)

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Simulation.Customers)
	assert.Equal(t, 2, cfg.Simulation.Craftsmen)
	assert.Equal(t, []int{5, 5, 5, 6}, cfg.Simulation.Schedule)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, 100.0, cfg.Timing.DoorRetryPerSecond)
	assert.Equal(t, "run.log", cfg.StateLog.File)
	assert.True(t, cfg.StateLog.Force)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "simulation:\n  customers: 5\n")
	t.Setenv("HC_SIMULATION_CUSTOMERS", "7")
	t.Setenv("HC_LOGGING_LEVEL", "debug")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Simulation.Customers)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown log format", "logging:\n  format: xml\n"},
		{"file output without path", "logging:\n  output: file\n"},
		{"postgres without url", "database:\n  type: postgres\n"},
		{"schedule not a whole number of pieces", "simulation:\n  piece_size: 2\n  schedule: [4, 3]\n"},
		{"delivery below one unit", "simulation:\n  schedule: [5, 0]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.content))

			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestSimulationConfig_Parameters(t *testing.T) {
	// Arrange
	cfg := &config.Config{}
	config.SetDefaults(cfg)

	// Act
	generated := cfg.Simulation.Parameters(rand.New(rand.NewPCG(7, 7)))
	cfg.Simulation.Schedule = []int{5, 5, 5, 6}
	explicit := cfg.Simulation.Parameters(rand.New(rand.NewPCG(7, 7)))

	// Assert
	assert.Len(t, generated.Schedule, 4)
	assert.NoError(t, generated.Validate())
	assert.Equal(t, []int{5, 5, 5, 6}, explicit.Schedule)
	assert.Equal(t, 3, explicit.Customers)
	assert.Equal(t, 4, explicit.StoreroomCapacity)
}

func TestSimulationConfig_EffectiveSeed(t *testing.T) {
	now := time.Unix(0, 12345)

	assert.Equal(t, uint64(12345), config.SimulationConfig{}.EffectiveSeed(now))
	assert.Equal(t, uint64(9), config.SimulationConfig{Seed: 9}.EffectiveSeed(now))
}
