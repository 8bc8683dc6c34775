package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "handicraft",
		Short: "Handicraft shop simulation",
		Long: `Simulates a handicraft shop: an entrepreneur runs the shop, customers
come in to buy, and craftsmen turn prime material into pieces in the workshop.
Every change of the shared state is appended to the state log.

Examples:
  handicraft run
  handicraft run --log-file shop.log --force
  handicraft run --seed 42 --customers 5 --craftsmen 2
  handicraft run --schedule 5,5,5,6
  handicraft config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: handicraft.yaml in ., ./configs or /etc/handicraft)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
