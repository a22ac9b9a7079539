// Package config implements oscorectl's configuration-inspection
// subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Inspect oscorectl configuration files.

Use 'oscorectl init' to create a new configuration file.

Subcommands:
  show      Display current configuration (secrets redacted)
  validate  Validate a configuration file without loading it into a command
  schema    Generate a JSON schema for the configuration file format`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
}
