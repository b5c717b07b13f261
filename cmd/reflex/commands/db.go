package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ontoframe/reflex/changelog"
	"github.com/ontoframe/reflex/logger"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the change-log database",
	Long: `db — Manage the change-log database

Examples:
  reflex db migrate    # Apply pending migrations
  reflex db stats      # Show change-log statistics`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show change-log statistics",
	Long:  "Display total record counts and per-context, per-operation breakdowns",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	database, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	logger.Infow("Database ready", "path", cfg.Database.Path)
	pterm.Success.Printf("Migrations applied (%s)\n", cfg.Database.Path)
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	database, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	store := changelog.NewSQLStore(database, logger.Logger)
	stats, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	pterm.DefaultHeader.Printf("Change Log — %s", cfg.Database.Path)
	pterm.Println()

	fmt.Printf("Total records:   %d\n", stats.TotalRecords)
	fmt.Printf("Unique entities: %d\n\n", stats.UniqueEntities)

	if len(stats.ByContext) > 0 {
		table := pterm.TableData{{"Context", "Records"}}
		for name, count := range stats.ByContext {
			table = append(table, []string{name, fmt.Sprintf("%d", count)})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
			return err
		}
	}

	if len(stats.ByOperation) > 0 {
		pterm.Println()
		table := pterm.TableData{{"Operation", "Records"}}
		for name, count := range stats.ByOperation {
			table = append(table, []string{name, fmt.Sprintf("%d", count)})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
			return err
		}
	}

	return nil
}
