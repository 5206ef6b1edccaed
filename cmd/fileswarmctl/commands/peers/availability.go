package peers

import (
	"fmt"
	"os"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/fileswarm/fileswarm/pkg/apiclient"
	"github.com/spf13/cobra"
)

var availabilityCmd = &cobra.Command{
	Use:   "availability <username>",
	Short: "Check whether a peer currently has an uploading slot available",
	Args:  cobra.ExactArgs(1),
	RunE:  runAvailability,
}

type availabilityTable apiclient.Availability

func (t availabilityTable) Headers() []string { return []string{"USERNAME", "AVAILABLE"} }

func (t availabilityTable) Rows() [][]string {
	return [][]string{{t.Username, cmdutil.BoolToYesNo(t.Available)}}
}

func runAvailability(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	avail, err := client.GetAvailability(args[0])
	if err != nil {
		return fmt.Errorf("failed to get availability: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, avail, availabilityTable(*avail))
}
