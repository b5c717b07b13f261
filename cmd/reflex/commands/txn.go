package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ontoframe/reflex/txn"
)

// TxnCmd represents the txn (transaction reconstruction) command
var TxnCmd = &cobra.Command{
	Use:   "txn",
	Short: "Reconstruct transactions from the change log",
	Long: `txn — Reconstruct transactions from the change log

The change log holds no transaction boundaries; groups are derived on
demand from same-context records within a time window.

Examples:
  reflex txn --entity Widget
  reflex txn --entity Widget --gap 500ms`,
	RunE: runTxn,
}

var (
	txnEntityFlag string
	txnGapFlag    time.Duration
)

func init() {
	TxnCmd.Flags().StringVar(&txnEntityFlag, "entity", "", "Entity identifier (required)")
	TxnCmd.Flags().DurationVar(&txnGapFlag, "gap", txn.DefaultMaxGap, "Maximum time gap within one transaction")
	TxnCmd.MarkFlagRequired("entity")
}

func runTxn(cmd *cobra.Command, args []string) error {
	database, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	engine, err := buildEngine(database, cfg)
	if err != nil {
		return err
	}

	gap := txnGapFlag
	if !cmd.Flags().Changed("gap") {
		gap = cfg.Analyzer.MaxGap()
	}

	transactions, err := engine.ReconstructTransactions(
		context.Background(), txnEntityFlag, txn.SameContextWithin(gap))
	if err != nil {
		return err
	}

	if len(transactions) == 0 {
		pterm.Info.Printf("No change records for %s\n", txnEntityFlag)
		return nil
	}

	for i, tx := range transactions {
		pterm.DefaultSection.Printf("Transaction %d — %s (%d records, context %s)",
			i+1, tx.ID, len(tx.Records), tx.Context())
		for _, rec := range tx.Records {
			fmt.Printf("  #%d %s %s/%s\n",
				rec.Seq,
				rec.Timestamp.Local().Format("15:04:05.000"),
				rec.Operation,
				rec.Facet,
			)
		}
	}
	return nil
}
