package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/fileswarm/fileswarm/pkg/apiclient"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the scheduler's global and per-group slot accounting",
	Long: `Show the scheduler's global and per-group slot accounting.

Examples:
  fileswarmctl status
  fileswarmctl status -o json`,
	RunE: runStatus,
}

// statusTable renders a Status as a table, one row per group plus a
// GLOBAL summary row.
type statusTable apiclient.Status

func (t statusTable) Headers() []string {
	return []string{"GROUP", "PRIORITY", "STRATEGY", "SLOTS", "USED", "READY"}
}

func (t statusTable) Rows() [][]string {
	rows := [][]string{
		{"GLOBAL", "-", "-", strconv.Itoa(t.GlobalSlots), strconv.Itoa(t.UsedSlots), "-"},
	}
	for _, g := range t.Groups {
		rows = append(rows, []string{
			g.Name,
			strconv.Itoa(g.Priority),
			g.Strategy,
			strconv.Itoa(g.Slots),
			strconv.Itoa(g.UsedSlots),
			strconv.Itoa(g.Ready),
		})
	}
	return rows
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	status, err := client.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, status, statusTable(*status))
}
