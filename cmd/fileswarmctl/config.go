package main

import (
	"fmt"
	"os"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration utilities",
}

var configReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Force an immediate re-read of the group topology source",
	Long: `Force the daemon to re-read its configuration source outside of
its normal watch interval and reconfigure the scheduler with the result.
Requires admin privileges.`,
	RunE: runConfigReload,
}

func init() {
	configCmd.AddCommand(configReloadCmd)
}

func runConfigReload(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetAuthenticatedClient()
	if err != nil {
		return err
	}

	result, err := client.ReloadConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Reloaded, global slots: %d\n", result.GlobalSlots)
	return nil
}
