// Package report provides output formatters for resolved coverage
// reports in JSON and human-readable text formats.
package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/covtree/internal/engine"
)

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version string `json:"version"`
	*engine.Report
}

// WriteJSON writes the resolved report as formatted JSON to the
// writer. The output conforms to the schema in Schema.
func WriteJSON(w io.Writer, rpt *engine.Report, version string) error {
	out := JSONReport{
		Version: version,
		Report:  rpt,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
