package commands

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/ontoframe/reflex/config"
	"github.com/ontoframe/reflex/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and manage reflex configuration",
	Long: `config — Show and manage reflex configuration

Examples:
  reflex config show              # Show resolved configuration
  reflex config contexts          # Show registered contexts and transitions`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configContextsCmd = &cobra.Command{
	Use:   "contexts",
	Short: "Show registered contexts and their transition graph",
	RunE:  runConfigContexts,
}

func init() {
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configContextsCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to render configuration")
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runConfigContexts(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	registry, err := cfg.Registry()
	if err != nil {
		return errors.Wrap(err, "failed to build context registry")
	}

	fmt.Printf("Default context: %s\n\n", registry.Default())
	for _, name := range registry.Names() {
		fmt.Printf("  %s\n", name)
		for _, target := range registry.Names() {
			if target != name && registry.CanTransition(name, target) {
				fmt.Printf("    -> %s\n", target)
			}
		}
	}
	return nil
}
