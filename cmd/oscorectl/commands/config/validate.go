package config

import (
	"fmt"

	oscoreconfig "github.com/coapsec/oscore/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file, reporting any struct-tag or
cross-field validation failure (§4.15) without deriving any security context.

Examples:
  oscorectl config validate
  oscorectl config validate --config /etc/oscore/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := oscoreconfig.MustLoad(configPath)
	if err != nil {
		return err
	}
	if err := oscoreconfig.Validate(cfg); err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	fmt.Println("Configuration is valid.")
	return nil
}
