package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/networth-dev/networth/internal/model"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	GetAccount(id int64) (model.Account, error)
	ListFingerprints(accountID int64) (map[string]struct{}, error)
	// ImportBatch inserts atomically with per-row error capture.
	ImportBatch(txs []model.Transaction) (int, []string, error)
}

// Pipeline normalizes heterogeneous CSV exports into ledger entries.
type Pipeline struct {
	store  Store
	logger *zap.Logger
}

// NewPipeline creates an import Pipeline.
func NewPipeline(store Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{store: store, logger: logger}
}

// readCSV reads the whole file; an unreadable file is a single
// top-level error, not a per-row one.
func readCSV(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // broker exports pad rows inconsistently

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV has no header row")
	}
	return records[0], records[1:], nil
}

// DetectFormat reads only as far as the header and reports the detected
// format alongside the raw header columns.
func DetectFormat(r io.Reader) (Format, []string, error) {
	header, _, err := readCSV(r)
	if err != nil {
		return FormatUnknown, nil, err
	}
	return Detect(header), header, nil
}

// Run imports a CSV into one account: detect (unless the caller pinned
// a format), parse, deduplicate by fingerprint, insert atomically.
//
// The fingerprint set is loaded once up front and extended as candidate
// rows pass, so duplicates within the same file are caught alongside
// duplicates against prior imports.
func (p *Pipeline) Run(accountID int64, r io.Reader, format Format) (*model.ImportResult, error) {
	account, err := p.store.GetAccount(accountID)
	if err != nil {
		return nil, fmt.Errorf("account %d: %w", accountID, err)
	}

	header, rows, err := readCSV(r)
	if err != nil {
		return nil, err
	}

	if format == "" || format == FormatUnknown {
		format = Detect(header)
	}
	parser := parserFor(format)
	if parser == nil {
		return nil, fmt.Errorf("unrecognized CSV format")
	}

	txs, errs := parser.Parse(header, rows)
	for i := range txs {
		txs[i].AccountID = accountID
		if txs[i].Currency == "" {
			txs[i].Currency = account.Currency
		}
	}

	seen, err := p.store.ListFingerprints(accountID)
	if err != nil {
		return nil, fmt.Errorf("loading fingerprints: %w", err)
	}

	fresh := make([]model.Transaction, 0, len(txs))
	skipped := 0
	for _, t := range txs {
		fp := t.Fingerprint()
		if _, dup := seen[fp]; dup {
			skipped++
			continue
		}
		seen[fp] = struct{}{}
		fresh = append(fresh, t)
	}

	imported, rowErrs, err := p.store.ImportBatch(fresh)
	if err != nil {
		return nil, fmt.Errorf("import batch: %w", err)
	}
	errs = append(errs, rowErrs...)

	p.logger.Info("csv import finished",
		zap.Int64("account_id", accountID),
		zap.String("format", string(format)),
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
		zap.Int("errors", len(errs)))

	return &model.ImportResult{
		Imported: imported,
		Skipped:  skipped,
		Total:    len(txs),
		Errors:   errs,
		Format:   string(format),
	}, nil
}
