package main

import (
	"fmt"
	"os"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/commands/peers"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "fileswarmctl",
	Short: "Operator CLI for the FileSwarm upload scheduler",
	Long: `fileswarmctl talks to a running fileswarmd's management API.

It reports admission status and queue position, and lets an operator
reassign a peer's group or force a configuration reload.

Run "fileswarmctl login --server <url> --token <token>" first, using a
token minted with "fileswarmd token mint <subject>" on the server.`,
	SilenceUsage: true,
	Version:      version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.ServerURL, "server", "", "Server URL (overrides stored context)")
	rootCmd.PersistentFlags().StringVar(&cmdutil.Flags.Token, "token", "", "Bearer token (overrides stored context)")
	rootCmd.PersistentFlags().StringVarP(&cmdutil.Flags.Output, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&cmdutil.Flags.NoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&cmdutil.Flags.Verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(healthzCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(peers.Cmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
