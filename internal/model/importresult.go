package model

// ImportResult summarizes one CSV import run. It is not persisted.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
	Format   string   `json:"format"`
}
