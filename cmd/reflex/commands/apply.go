package commands

import (
	"context"
	"encoding/json"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ontoframe/reflex/contexts"
	"github.com/ontoframe/reflex/errors"
)

// ApplyCmd represents the apply command
var ApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply an operation to an entity facet",
	Long: `apply — Apply an operation to an entity facet

Opens a session on the entity, optionally switches context, then routes
the operation through the active context's adapter. The change record is
appended durably before the facet value changes.

Examples:
  reflex apply --entity Widget --facet status --payload '"active"'
  reflex apply --entity Widget --context instance --facet parts --payload '["W1"]'
  reflex apply --entity Widget --facet counter --kind increment_property --payload 5
  reflex apply --entity Widget --facet status --kind clear_property`,
	RunE: runApply,
}

var (
	applyEntityFlag  string
	applyContextFlag string
	applyFacetFlag   string
	applyKindFlag    string
	applyPayloadFlag string
)

func init() {
	ApplyCmd.Flags().StringVar(&applyEntityFlag, "entity", "", "Entity identifier (required)")
	ApplyCmd.Flags().StringVar(&applyContextFlag, "context", "", "Context to switch to before applying")
	ApplyCmd.Flags().StringVar(&applyFacetFlag, "facet", "", "Facet to operate on (required)")
	ApplyCmd.Flags().StringVar(&applyKindFlag, "kind", contexts.OpModifyProperty, "Operation kind")
	ApplyCmd.Flags().StringVar(&applyPayloadFlag, "payload", "", "Operation payload as JSON")
	ApplyCmd.MarkFlagRequired("entity")
	ApplyCmd.MarkFlagRequired("facet")
}

func runApply(cmd *cobra.Command, args []string) error {
	var payload any
	if applyPayloadFlag != "" {
		if err := json.Unmarshal([]byte(applyPayloadFlag), &payload); err != nil {
			return errors.Wrap(err, "invalid --payload JSON")
		}
	}

	database, cfg, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	engine, err := buildEngine(database, cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	session, err := engine.OpenSession(ctx, applyEntityFlag)
	if err != nil {
		return err
	}

	if applyContextFlag != "" {
		if err := engine.SwitchContext(ctx, session, applyContextFlag); err != nil {
			return err
		}
	}

	changeID, err := engine.ApplyOperation(ctx, session, contexts.Operation{
		Kind:    applyKindFlag,
		Facet:   applyFacetFlag,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	pterm.Success.Printf("Applied %s to %s/%s in context %s (change %s)\n",
		applyKindFlag, applyEntityFlag, applyFacetFlag, session.Context(), changeID)
	return nil
}
