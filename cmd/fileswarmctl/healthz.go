package main

import (
	"fmt"
	"os"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/fileswarm/fileswarm/internal/cli/timeutil"
	"github.com/fileswarm/fileswarm/pkg/apiclient"
	"github.com/spf13/cobra"
)

var healthzCmd = &cobra.Command{
	Use:   "healthz",
	Short: "Check the daemon's liveness and report its uptime",
	RunE:  runHealthz,
}

type healthzTable apiclient.HealthData

func (t healthzTable) Headers() []string { return []string{"SERVICE", "STARTED", "UPTIME"} }

func (t healthzTable) Rows() [][]string {
	return [][]string{{t.Service, timeutil.FormatTime(t.StartedAt), timeutil.FormatUptime(t.Uptime)}}
}

func runHealthz(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	h, err := client.Health()
	if err != nil {
		return fmt.Errorf("failed to check health: %w", err)
	}

	return cmdutil.PrintResource(os.Stdout, h, healthzTable(*h))
}
