package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ontoframe/reflex/changelog"
	"github.com/ontoframe/reflex/errors"
	"github.com/ontoframe/reflex/logger"
)

// LogCmd represents the log (change-log query) command
var LogCmd = &cobra.Command{
	Use:   "log",
	Short: "Query change records for an entity",
	Long: `log — Query change records for an entity

Records are returned in append order, bounded by the log size at query
time.

Examples:
  reflex log --entity Widget
  reflex log --entity Widget --context domain
  reflex log --entity Widget --since 1h --limit 20
  reflex log --entity Widget --json`,
	RunE: runLog,
}

var (
	logEntityFlag  string
	logContextFlag string
	logSinceFlag   time.Duration
	logUntilFlag   time.Duration
	logLimitFlag   int
	logJSONFlag    bool
)

func init() {
	LogCmd.Flags().StringVar(&logEntityFlag, "entity", "", "Entity identifier (required)")
	LogCmd.Flags().StringVar(&logContextFlag, "context", "", "Only records written under this context")
	LogCmd.Flags().DurationVar(&logSinceFlag, "since", 0, "Only records newer than this (e.g. 30m, 1h)")
	LogCmd.Flags().DurationVar(&logUntilFlag, "until", 0, "Only records older than this (e.g. 5m)")
	LogCmd.Flags().IntVar(&logLimitFlag, "limit", 0, "Maximum number of records (0 = all)")
	LogCmd.Flags().BoolVar(&logJSONFlag, "json", false, "Emit records as JSON")
	LogCmd.MarkFlagRequired("entity")
}

func runLog(cmd *cobra.Command, args []string) error {
	database, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	filter := changelog.Filter{
		Context: logContextFlag,
		Limit:   logLimitFlag,
	}
	if logSinceFlag > 0 {
		since := time.Now().Add(-logSinceFlag)
		filter.Since = &since
	}
	if logUntilFlag > 0 {
		until := time.Now().Add(-logUntilFlag)
		filter.Until = &until
	}

	store := changelog.NewSQLStore(database, logger.Logger)
	it, err := store.Query(context.Background(), logEntityFlag, filter)
	if err != nil {
		return err
	}
	records, err := it.Collect(context.Background())
	if err != nil {
		return err
	}

	if logJSONFlag {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return errors.Wrap(encoder.Encode(records), "encode records")
	}

	if len(records) == 0 {
		pterm.Info.Printf("No change records for %s\n", logEntityFlag)
		return nil
	}

	table := pterm.TableData{{"Seq", "Time", "Context", "Operation", "Facet"}}
	for _, rec := range records {
		table = append(table, []string{
			fmt.Sprintf("%d", rec.Seq),
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Context,
			rec.Operation,
			rec.Facet,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
}
