package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ontoframe/reflex/cmd/reflex/commands"
	"github.com/ontoframe/reflex/config"
	"github.com/ontoframe/reflex/logger"
)

var rootCmd = &cobra.Command{
	Use:   "reflex",
	Short: "reflex - multi-context reflective data projection",
	Long: `reflex - multi-context reflective projection with change logging.

Entities are loaded once into a unified store; operations are applied
through context adapters, every mutation lands in a durable change log,
and transaction boundaries are reconstructed from the log on demand.

Available commands:
  config - Show and manage reflex configuration
  db     - Manage the change-log database
  apply  - Apply an operation to an entity under a context
  log    - Query change records for an entity
  txn    - Reconstruct transactions from the change log

Examples:
  reflex config show                     # Show resolved configuration
  reflex db migrate                      # Apply pending migrations
  reflex apply --entity Widget --context domain --facet instances --payload '["W1"]'
  reflex log --entity Widget             # List Widget's change records
  reflex txn --entity Widget --gap 500ms # Group changes into transactions`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.Initialize(cfg.Logging.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logger.SetVerbosity(verbosity)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ApplyCmd)
	rootCmd.AddCommand(commands.LogCmd)
	rootCmd.AddCommand(commands.TxnCmd)
}

func main() {
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
