package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/networth-dev/networth/internal/model"
)

// ExportHeader is the column row of a ledger CSV dump. The generic
// parser round-trips it: an export re-imports cleanly (and dedups to
// zero new rows).
const ExportHeader = "id,account_name,symbol,type,quantity,price,fee,currency,date,notes"

// ExportCSV dumps ledger entries. accountName resolves display names;
// unknown accounts export with an empty name rather than failing.
func ExportCSV(w io.Writer, txs []model.Transaction, accountName func(int64) string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(ExportHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, t := range txs {
		row := []string{
			fmt.Sprintf("%d", t.ID),
			accountName(t.AccountID),
			t.Symbol,
			string(t.Type),
			t.Quantity.String(),
			t.Price.String(),
			t.Fee.String(),
			t.Currency,
			t.Date.Format(model.DateFormat),
			t.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
