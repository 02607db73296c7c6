package importer

import "strings"

// Format identifies the origin of a CSV export.
type Format string

const (
	FormatRevolutStocks      Format = "revolut-stocks"
	FormatRevolutCommodities Format = "revolut-commodities"
	FormatTrezor             Format = "trezor"
	FormatGeneric            Format = "generic"
	FormatUnknown            Format = "unknown"
)

// detectRule matches a normalized header set against one format.
type detectRule struct {
	format   Format
	required []string
}

// Rules are checked in order; the first match wins, so ambiguous
// headers resolve deterministically. The generic rule must stay last
// among the known formats: broker exports also carry symbol-ish and
// type-ish columns.
var detectRules = []detectRule{
	{FormatRevolutStocks, []string{"ticker", "price per share"}},
	{FormatRevolutCommodities, []string{"product", "started date", "state"}},
	{FormatTrezor, []string{"transaction id", "amount unit"}},
	{FormatGeneric, []string{"symbol", "type"}},
}

// Detect matches a header row against the known format signatures.
// Matching is case-insensitive and independent of column order.
func Detect(header []string) Format {
	set := make(map[string]bool, len(header))
	for _, h := range header {
		set[normalizeHeader(h)] = true
	}

	for _, rule := range detectRules {
		matched := true
		for _, col := range rule.required {
			if !set[col] {
				matched = false
				break
			}
		}
		if matched {
			return rule.format
		}
	}
	return FormatUnknown
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}
