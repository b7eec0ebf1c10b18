package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fonsecaaso/linkvault/go-server/config"
	"github.com/fonsecaaso/linkvault/go-server/internal/token"
)

// The token command signs a bearer token with JWT_SECRET for local
// development. Without an argument a random owner id is generated.
func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [owner-id]",
		Short: "Issue a development bearer token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, issuer, err := config.LoadJWTConfig()
			if err != nil {
				return err
			}
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return fmt.Errorf("failed to read --ttl: %w", err)
			}

			owner := uuid.NewString()
			if len(args) == 1 {
				owner = args[0]
			}

			signed, err := token.NewManager(secret, issuer).WithTTL(ttl).GenerateToken(owner)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
