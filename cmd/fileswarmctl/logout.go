package main

import (
	"fmt"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/fileswarm/fileswarm/internal/cli/credentials"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored server URL and token",
	RunE:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	if err := store.ClearCurrentContext(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	cmdutil.PrintSuccess("Logged out")
	return nil
}
