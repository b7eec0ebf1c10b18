package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/config"
	"github.com/fonsecaaso/linkvault/go-server/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}

			log, shutdown, err := logger.New(cfg)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(log)
			defer func() { _ = shutdown(cmd.Context()) }()

			st, err := openStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.close()

			applied, err := st.migrate(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to %s\n", applied, cfg.DatabaseDriver)
			return nil
		},
	}
}
