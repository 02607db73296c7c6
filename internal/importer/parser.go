package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/networth-dev/networth/internal/model"
)

// Parser converts the rows of one CSV variant into normalized
// transactions. Row-level problems are reported as strings; a parser
// never fails the whole file.
type Parser interface {
	Parse(header []string, rows [][]string) ([]model.Transaction, []string)
	Format() Format
}

// parserFor returns the parser for a detected format, or nil for
// FormatUnknown.
func parserFor(f Format) Parser {
	switch f {
	case FormatRevolutStocks:
		return &revolutStocksParser{}
	case FormatRevolutCommodities:
		return &revolutCommoditiesParser{}
	case FormatTrezor:
		return &trezorParser{}
	case FormatGeneric:
		return &genericParser{}
	}
	return nil
}

// columns maps normalized header names to their index.
type columns map[string]int

func indexColumns(header []string) columns {
	c := make(columns, len(header))
	for i, h := range header {
		c[normalizeHeader(h)] = i
	}
	return c
}

// field returns the first present column among names, trimmed, or "".
func (c columns) field(rec []string, names ...string) string {
	for _, name := range names {
		if i, ok := c[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
	}
	return ""
}

// parseDecimal parses an amount, treating the empty string as zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// dateLayouts are tried in order when a variant carries timestamps in
// more than one shape.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// parseDay resolves a raw date string to its calendar day.
func parseDay(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), true
		}
	}
	return time.Time{}, false
}
