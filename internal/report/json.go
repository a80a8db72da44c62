// Package report renders reconciliation results as line-numbered
// listings, styled terminal text and JSON.
package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/typesafe/internal/taxonomy"
)

// JSONSummary aggregates a whole run.
type JSONSummary struct {
	Files      int `json:"files"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Mismatches int `json:"mismatches"`
}

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version string                 `json:"version"`
	Results []*taxonomy.FileResult `json:"results"`
	Summary JSONSummary            `json:"summary"`
}

// WriteJSON writes results as formatted JSON to the writer. The
// results are not modified.
func WriteJSON(w io.Writer, results []*taxonomy.FileResult, version string) error {
	report := JSONReport{
		Version: version,
		Results: make([]*taxonomy.FileResult, 0, len(results)),
	}
	for _, r := range results {
		if r.Mismatches == nil {
			c := *r
			c.Mismatches = []taxonomy.Mismatch{}
			r = &c
		}
		report.Results = append(report.Results, r)
		report.Summary.Files++
		report.Summary.Mismatches += len(r.Mismatches)
		if r.Passed() {
			report.Summary.Passed++
		} else {
			report.Summary.Failed++
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
