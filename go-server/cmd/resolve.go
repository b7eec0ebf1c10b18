package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/service"
	"github.com/fonsecaaso/linkvault/go-server/internal/title"
)

// The resolve command runs the title resolver once from the terminal. A
// failed fetch still prints the URL-derived fallback title; the failure kind
// goes to stderr.
//
// Example usage:
//
//	linkvault resolve https://go.dev/doc
//	linkvault resolve --json --timeout=3s example.com
func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Fetch a page and print its title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, err := cmd.Flags().GetDuration("timeout")
			if err != nil {
				return fmt.Errorf("failed to read --timeout: %w", err)
			}
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return fmt.Errorf("failed to read --json: %w", err)
			}
			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("failed to read --debug: %w", err)
			}

			if debug {
				log, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				zap.ReplaceGlobals(log)
				defer func() { _ = log.Sync() }()
			}

			target, err := service.NormalizeURL(args[0])
			if err != nil {
				return err
			}

			resolver := newResolver(timeout, title.DefaultMaxBodyBytes, debug)
			result, err := resolver.Resolve(cmd.Context(), target)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", title.KindOf(err), err)
				result = title.Result{Title: title.FallbackTitle(target), URL: target}
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Title)
			return nil
		},
	}

	cmd.Flags().Duration("timeout", title.DefaultTimeout, "Fetch timeout")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	cmd.Flags().Bool("debug", false, "Log the outbound request and response")
	return cmd
}
