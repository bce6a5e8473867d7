package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"swachh-scan-api-server/internal/database"
	"swachh-scan-api-server/internal/registry"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo facilities and staff when they are missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())

			st, err := openStore(cmd.Context(), cfg, logger, true)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			result, err := database.SeedDemoData(cmd.Context(), registry.NewService(st, st, logger), logger)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "facilities created: %d, staff created: %d\n", result.FacilitiesCreated, result.StaffCreated)
			return nil
		},
	}
}
