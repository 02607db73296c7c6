package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/config"
	"github.com/networth-dev/networth/internal/importer"
	"github.com/networth-dev/networth/internal/store"
)

func newImportCommand() *cobra.Command {
	var accountID int64
	var format string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a broker or wallet CSV export into an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			st, err := store.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			pipeline := importer.NewPipeline(st, logger)
			result, err := pipeline.Run(accountID, f, importer.Format(format))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "format: %s\nimported: %d\nskipped: %d\ntotal: %d\n",
				result.Format, result.Imported, result.Skipped, result.Total)
			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "target account id (required)")
	cmd.Flags().StringVar(&format, "format", "", "CSV format (default: auto-detect)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
