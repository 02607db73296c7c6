package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/networth-dev/networth/internal/config"
	"github.com/networth-dev/networth/internal/importer"
	"github.com/networth-dev/networth/internal/store"
)

func newExportCommand() *cobra.Command {
	var accountID int64
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the transaction ledger as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			st, err := store.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			txs, err := st.ListTransactions(accountID)
			if err != nil {
				return err
			}
			accounts, err := st.ListAccounts()
			if err != nil {
				return err
			}
			names := make(map[int64]string, len(accounts))
			for _, a := range accounts {
				names[a.ID] = a.Name
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}

			return importer.ExportCSV(out, txs, func(id int64) string { return names[id] })
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "account id (default: all accounts)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	return cmd
}
