package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"swachh-scan-api-server/config"
	"swachh-scan-api-server/internal/store/mongostore"
)

func newIndexesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if cfg.Store.Driver == config.DriverMemory {
				return fmt.Errorf("indexes requires the %q store driver", config.DriverMongo)
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			ms, err := mongostore.Connect(cmd.Context(), cfg.Mongo, logger)
			if ms != nil {
				defer ms.Close(context.Background())
			}
			if err != nil {
				return err
			}
			if err := ms.EnsureIndexes(cmd.Context()); err != nil {
				return fmt.Errorf("failed to create indexes: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "indexes are in place")
			return nil
		},
	}
}
