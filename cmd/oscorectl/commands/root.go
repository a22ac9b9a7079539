// Package commands implements oscorectl's Cobra command tree: init,
// config show, context show, and message protect/unprotect (§4.16).
package commands

import (
	"os"

	configcmd "github.com/coapsec/oscore/cmd/oscorectl/commands/config"
	contextcmd "github.com/coapsec/oscore/cmd/oscorectl/commands/context"
	messagecmd "github.com/coapsec/oscore/cmd/oscorectl/commands/message"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// cfgFile is the global --config flag shared by every subcommand.
	cfgFile string
)

// rootCmd is the base command invoked when oscorectl is run without a
// subcommand.
var rootCmd = &cobra.Command{
	Use:   "oscorectl",
	Short: "OSCORE security context inspector",
	Long: `oscorectl derives OSCORE security contexts from a configuration file
and round-trips sample CoAP messages through the protect/unprotect pipeline.

Use "oscorectl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, exposed for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/oscore/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(contextcmd.Cmd)
	rootCmd.AddCommand(messagecmd.ProtectCmd)
	rootCmd.AddCommand(messagecmd.UnprotectCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global --config flag.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
