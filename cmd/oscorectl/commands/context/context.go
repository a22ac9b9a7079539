// Package context implements oscorectl's context inspection subcommand
// (§4.16: "oscorectl context show").
package context

import (
	"github.com/spf13/cobra"
)

// Cmd is the context subcommand.
var Cmd = &cobra.Command{
	Use:   "context",
	Short: "Inspect derived OSCORE security contexts",
	Long: `Derive the Common, Sender, and Recipient contexts from the loaded
configuration's pre-established material (§3, §4.5) and inspect them.`,
}

func init() {
	Cmd.AddCommand(showCmd)
}
