package peers

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/fileswarm/fileswarm/pkg/apiclient"
	"github.com/spf13/cobra"
)

var positionCmd = &cobra.Command{
	Use:   "position <username> [filename]",
	Short: "Show a peer's place in its group's admission queue",
	Long: `Show a peer's place in its group's admission queue.

With a filename, reports the position of that specific pending upload.
Without one, reports 0 if the peer's group has a free slot, and
otherwise the number of uploads currently tracked for the peer.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPosition,
}

type positionTable apiclient.Position

func (t positionTable) Headers() []string { return []string{"USERNAME", "FILENAME", "POSITION"} }

func (t positionTable) Rows() [][]string {
	return [][]string{{t.Username, cmdutil.EmptyOr(t.Filename, "-"), strconv.Itoa(t.Position)}}
}

func runPosition(cmd *cobra.Command, args []string) error {
	username := args[0]
	var filename string
	if len(args) == 2 {
		filename = args[1]
	}

	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	pos, err := client.GetPosition(username, filename)
	if err != nil {
		return fmt.Errorf("failed to get position: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, pos, positionTable(*pos))
}
