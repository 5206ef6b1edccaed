// Package peers implements peer inspection and reassignment commands for
// fileswarmctl.
package peers

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for peer inspection and reassignment.
var Cmd = &cobra.Command{
	Use:   "peers",
	Short: "Inspect and manage upload peers",
	Long: `Inspect a peer's admission availability and queue position, or
reassign its group.

Examples:
  fileswarmctl peers availability alice
  fileswarmctl peers position alice
  fileswarmctl peers position alice report.csv
  fileswarmctl peers group-set alice premium`,
}

func init() {
	Cmd.AddCommand(availabilityCmd)
	Cmd.AddCommand(positionCmd)
	Cmd.AddCommand(groupSetCmd)
}
