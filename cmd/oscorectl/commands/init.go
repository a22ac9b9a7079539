package commands

import (
	"fmt"
	"os"

	"github.com/coapsec/oscore/internal/cli/prompt"
	"github.com/coapsec/oscore/pkg/config"
	"github.com/spf13/cobra"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample oscorectl configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/oscore/config.yaml
with a freshly generated master_secret and sender/recipient IDs, suitable for local
development against a peer initialized the same way with sender_id/recipient_id
swapped. Use --interactive to type in real pre-established material instead.

Examples:
  # Initialize with generated development key material
  oscorectl init

  # Initialize with custom path
  oscorectl init --config /etc/oscore/config.yaml

  # Prompt for real master_secret/sender_id/recipient_id
  oscorectl init --interactive

  # Force overwrite existing config
  oscorectl init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVar(&initInteractive, "interactive", false, "Prompt for master_secret/sender_id/recipient_id instead of generating them")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()
	configPath := configFile
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	var err error
	if initInteractive {
		err = initInteractively(configPath)
	} else if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Inspect the derived contexts: oscorectl context show")
	fmt.Printf("  3. Or specify a custom config: oscorectl context show --config %s\n", configPath)
	if !initInteractive {
		fmt.Println("\nSecurity note:")
		fmt.Println("  A random master_secret and sender/recipient IDs have been generated")
		fmt.Println("  for local development. For a real deployment, generate your own secret:")
		fmt.Println("    openssl rand -hex 32")
		fmt.Println("  and run 'oscorectl init --interactive' to enter it along with the")
		fmt.Println("  sender_id/recipient_id you've coordinated with the peer endpoint.")
	}

	return nil
}

// initInteractively prompts for the Security block's fields instead of
// generating them, then writes a config carrying everything else's
// default (§4.16: "manifoldco/promptui prompts for secret material when
// run interactively").
func initInteractively(path string) error {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	cfg := config.GetDefaultConfig()

	masterSecret, err := prompt.Hex("Master secret (hex)", 0)
	if err != nil {
		return err
	}
	masterSalt, err := prompt.HexOptional("Master salt (hex)")
	if err != nil {
		return err
	}
	senderID, err := prompt.HexOptional("Sender ID / kid (hex)")
	if err != nil {
		return err
	}
	recipientID, err := prompt.HexOptional("Recipient ID / kid (hex)")
	if err != nil {
		return err
	}
	idContext, err := prompt.HexOptional("ID context (hex)")
	if err != nil {
		return err
	}

	cfg.Security.MasterSecret = masterSecret
	cfg.Security.MasterSalt = masterSalt
	cfg.Security.SenderID = senderID
	cfg.Security.RecipientID = recipientID
	cfg.Security.IDContext = idContext

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("entered values fail validation: %w", err)
	}

	return config.SaveConfig(cfg, path)
}
