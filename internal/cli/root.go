package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "swachh-scan",
		Short:        "Swachh Scan: facility hygiene feedback backend",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; an explicit --env-file is not.
			if opts.envFile != "" {
				return godotenv.Load(opts.envFile)
			}
			if _, err := os.Stat(".env"); err == nil {
				return godotenv.Load()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "./config", "Directory holding config.yaml")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load environment variables from this file first")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	cmd.AddCommand(newIndexesCmd(opts))

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}
