package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Simulation defaults
	if cfg.Simulation.Customers == 0 {
		cfg.Simulation.Customers = 3
	}
	if cfg.Simulation.Craftsmen == 0 {
		cfg.Simulation.Craftsmen = 3
	}
	if cfg.Simulation.StoreroomCapacity == 0 {
		cfg.Simulation.StoreroomCapacity = 4
	}
	if cfg.Simulation.LowWaterMark == 0 {
		cfg.Simulation.LowWaterMark = 2
	}
	if cfg.Simulation.PieceSize == 0 {
		cfg.Simulation.PieceSize = 1
	}
	if cfg.Simulation.Deliveries == 0 {
		cfg.Simulation.Deliveries = 4
	}

	// Timing defaults
	if cfg.Timing.Unit == 0 {
		cfg.Timing.Unit = time.Microsecond
	}
	if cfg.Timing.ServiceMax == 0 {
		cfg.Timing.ServiceMax = 20
	}
	if cfg.Timing.ProductionMax == 0 {
		cfg.Timing.ProductionMax = 30
	}
	if cfg.Timing.ChoresMax == 0 {
		cfg.Timing.ChoresMax = 40
	}
	if cfg.Timing.DoorRetryPerSecond == 0 {
		cfg.Timing.DoorRetryPerSecond = 20000
	}
	if cfg.Timing.DoorRetryBurst == 0 {
		cfg.Timing.DoorRetryBurst = 1
	}

	// State log defaults
	if cfg.StateLog.File == "" {
		cfg.StateLog.File = "handicraft.log"
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = ":memory:"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 10
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 2
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
