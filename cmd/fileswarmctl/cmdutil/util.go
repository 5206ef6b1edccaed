// Package cmdutil provides shared utilities for fileswarmctl commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/fileswarm/fileswarm/internal/cli/credentials"
	"github.com/fileswarm/fileswarm/internal/cli/output"
	"github.com/fileswarm/fileswarm/internal/cli/prompt"
	"github.com/fileswarm/fileswarm/pkg/apiclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
	Verbose   bool
}

// GetAuthenticatedClient returns an API client configured from the current
// context. It uses the --server and --token flags if provided, otherwise
// falls back to the context stored by "fileswarmctl login". Unlike
// dittofsctl there is no refresh token: tokens come from an operator
// running "fileswarmd token mint" and simply expire when their lifetime
// runs out, at which point the operator mints a new one and logs in again.
func GetAuthenticatedClient() (*apiclient.Client, error) {
	if Flags.ServerURL != "" && Flags.Token != "" {
		return apiclient.New(Flags.ServerURL).WithToken(Flags.Token), nil
	}

	store, err := credentials.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	ctx, err := store.GetCurrentContext()
	if err != nil {
		return nil, fmt.Errorf("not logged in, run 'fileswarmctl login' first")
	}

	url := ctx.ServerURL
	if Flags.ServerURL != "" {
		url = Flags.ServerURL
	}
	if url == "" {
		return nil, fmt.Errorf("no server URL configured, run 'fileswarmctl login --server <url> --token <token>'")
	}

	tok := ctx.AccessToken
	if Flags.Token != "" {
		tok = Flags.Token
	}
	if tok == "" {
		return nil, fmt.Errorf("no access token, run 'fileswarmctl login' first")
	}

	return apiclient.New(url).WithToken(tok), nil
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// PrintResource prints a resource in the configured format. For table
// format it uses tableRenderer, for JSON/YAML it outputs the resource
// directly.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}

// RunWithConfirmation prompts for confirmation (unless force is true) and
// runs actionFn, printing successMsg on completion.
func RunWithConfirmation(label string, force bool, successMsg string, actionFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(label, force)
	if err != nil {
		return HandleAbort(err)
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := actionFn(); err != nil {
		return err
	}

	PrintSuccess(successMsg)
	return nil
}

// BoolToYesNo converts a boolean to "yes" or "no".
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr returns value if non-empty, otherwise fallback. Useful for table
// display where empty fields should show "-".
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// HandleAbort checks if err is an abort (Ctrl+C) and prints a message.
// Returns nil for abort, otherwise returns the original error.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
