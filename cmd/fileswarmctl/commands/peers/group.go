package peers

import (
	"fmt"
	"os"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/fileswarm/fileswarm/pkg/apiclient"
	"github.com/spf13/cobra"
)

var groupSetForce bool

var groupSetCmd = &cobra.Command{
	Use:   "group-set <username> <group>",
	Short: "Reassign a peer to a different admission group",
	Long: `Reassign a peer to a different admission group, overriding
whatever its normal group source would assign. Requires admin
privileges. The peer's pending uploads are scheduled under the new
group from the next admission pass and keep their original enqueue
and ready times.`,
	Args: cobra.ExactArgs(2),
	RunE: runGroupSet,
}

func init() {
	groupSetCmd.Flags().BoolVarP(&groupSetForce, "force", "f", false, "Skip confirmation prompt")
}

type assignGroupTable apiclient.AssignGroupResult

func (t assignGroupTable) Headers() []string { return []string{"USERNAME", "GROUP"} }
func (t assignGroupTable) Rows() [][]string  { return [][]string{{t.Username, t.Group}} }

func runGroupSet(cmd *cobra.Command, args []string) error {
	username, group := args[0], args[1]

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	var result *apiclient.AssignGroupResult
	label := fmt.Sprintf("Reassign peer '%s' to group '%s'?", username, group)
	err = cmdutil.RunWithConfirmation(label, groupSetForce, fmt.Sprintf("%s reassigned to %s", username, group), func() error {
		var innerErr error
		result, innerErr = client.AssignGroup(username, group)
		return innerErr
	})
	if err != nil {
		return fmt.Errorf("failed to assign group: %w", err)
	}
	if result == nil {
		return nil
	}

	format, ferr := cmdutil.GetOutputFormatParsed()
	if ferr == nil && format.String() != "table" {
		return cmdutil.PrintResource(os.Stdout, result, assignGroupTable(*result))
	}
	return nil
}
