package main

import (
	"fmt"
	"net/url"

	"github.com/fileswarm/fileswarm/cmd/fileswarmctl/cmdutil"
	"github.com/fileswarm/fileswarm/internal/cli/credentials"
	"github.com/fileswarm/fileswarm/internal/cli/prompt"
	"github.com/spf13/cobra"
)

var (
	loginServer string
	loginToken  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a server URL and bearer token for fileswarmctl to use",
	Long: `Store a server URL and bearer token.

FileSwarm's management API has no username/password login endpoint: an
operator mints a token out of band with "fileswarmd token mint <subject>"
and hands it to whoever runs this CLI.

Examples:
  fileswarmctl login --server http://localhost:8080 --token eyJhbGciOi...`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Server URL (required on first login)")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Bearer token minted via 'fileswarmd token mint'")
}

func runLogin(cmd *cobra.Command, args []string) error {
	store, err := credentials.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	serverURLStr := loginServer
	if serverURLStr == "" {
		ctx, err := store.GetCurrentContext()
		if err != nil || ctx == nil || ctx.ServerURL == "" {
			return fmt.Errorf("no server URL specified and no saved context found\n\n" +
				"  fileswarmctl login --server http://localhost:8080 --token <token>")
		}
		serverURLStr = ctx.ServerURL
	}

	parsedURL, err := url.Parse(serverURLStr)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if parsedURL.Scheme == "" {
		parsedURL.Scheme = "http"
		serverURLStr = parsedURL.String()
	}

	token := loginToken
	if token == "" {
		token, err = prompt.InputRequired("Token")
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	contextName := store.GetCurrentContextName()
	if contextName == "" {
		contextName = credentials.GenerateContextName(serverURLStr)
	}

	ctx := &credentials.Context{
		ServerURL:   serverURLStr,
		AccessToken: token,
	}

	if err := store.SetContext(contextName, ctx); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	if err := store.UseContext(contextName); err != nil {
		return fmt.Errorf("failed to set current context: %w", err)
	}

	fmt.Printf("Logged in to %s\n", serverURLStr)
	fmt.Printf("Credentials saved to: %s\n", store.ConfigPath())
	return nil
}
