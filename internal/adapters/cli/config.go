package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/handicraft-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect the handicraft configuration.

Configuration is loaded from multiple sources with priority:
1. Environment variables (HC_* prefix, e.g. HC_SIMULATION_CUSTOMERS)
2. Config file (handicraft.yaml)
3. Default values

Examples:
  handicraft config show
  handicraft config show --config ./configs/busy-shop.yaml`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}
			printConfig(out, cfg)
			return nil
		},
	}

	return cmd
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Handicraft Configuration")
	fmt.Fprintln(out, "========================")

	sim := cfg.Simulation
	fmt.Fprintln(out, "Simulation:")
	fmt.Fprintf(out, "  Customers:        %d\n", sim.Customers)
	fmt.Fprintf(out, "  Craftsmen:        %d\n", sim.Craftsmen)
	fmt.Fprintf(out, "  Storeroom:        %d pieces\n", sim.StoreroomCapacity)
	fmt.Fprintf(out, "  Low Water Mark:   %d\n", sim.LowWaterMark)
	fmt.Fprintf(out, "  Piece Size:       %d\n", sim.PieceSize)
	if len(sim.Schedule) > 0 {
		fmt.Fprintf(out, "  Schedule:         %s\n", joinInts(sim.Schedule))
	} else {
		fmt.Fprintf(out, "  Schedule:         %d random deliveries\n", sim.Deliveries)
	}
	if sim.Seed != 0 {
		fmt.Fprintf(out, "  Seed:             %d\n", sim.Seed)
	} else {
		fmt.Fprintf(out, "  Seed:             (from clock)\n")
	}

	fmt.Fprintln(out, "\nTiming:")
	fmt.Fprintf(out, "  Unit:             %s\n", cfg.Timing.Unit)
	fmt.Fprintf(out, "  Pauses (units):   service %d, production %d, chores %d\n",
		cfg.Timing.ServiceMax, cfg.Timing.ProductionMax, cfg.Timing.ChoresMax)
	fmt.Fprintf(out, "  Door Retries:     %g/s (burst: %d)\n", cfg.Timing.DoorRetryPerSecond, cfg.Timing.DoorRetryBurst)
	if cfg.Timing.RunTimeout > 0 {
		fmt.Fprintf(out, "  Run Timeout:      %s\n", cfg.Timing.RunTimeout)
	}

	fmt.Fprintln(out, "\nState Log:")
	fmt.Fprintf(out, "  File:             %s\n", cfg.StateLog.File)
	fmt.Fprintf(out, "  Force Overwrite:  %t\n", cfg.StateLog.Force)

	fmt.Fprintln(out, "\nDatabase:")
	fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
	if cfg.Database.URL != "" {
		fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
	} else {
		fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
	}
	fmt.Fprintf(out, "  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

	fmt.Fprintln(out, "\nMetrics:")
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "  Endpoint:         http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	} else {
		fmt.Fprintln(out, "  Enabled:          false")
	}
}

// maskPassword hides the password in a database URL
func maskPassword(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}
	return u.Redacted()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ",")
}
