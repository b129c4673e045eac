// Package report renders scan results as the line-oriented text report.
package report

import (
	"fmt"
	"io"

	"github.com/starford/featlint/internal/scan"
)

// Write renders one subdirectory's scan result to w: a header naming the
// role and path, then one PASS/FAIL line per applicable rule in catalog
// order, or a marker when no rules apply.
func Write(w io.Writer, res *scan.Result) error {
	if _, err := fmt.Fprintf(w, "%s (%s):\n", res.Subdir.Role, res.Subdir.Path); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	if res.NoRules() {
		if _, err := fmt.Fprintln(w, "  # No rules for this directory"); err != nil {
			return fmt.Errorf("report: write: %w", err)
		}
		return nil
	}
	for _, r := range res.Rules {
		status := "FAIL"
		if res.Outcomes[r.Name] {
			status = "PASS"
		}
		if _, err := fmt.Fprintf(w, "  - %s: %s\n", r.Name, status); err != nil {
			return fmt.Errorf("report: write: %w", err)
		}
	}
	return nil
}

// Printer adapts Write to the engine's per-directory reporter interface.
type Printer struct {
	W io.Writer
}

func (p *Printer) Report(res *scan.Result) error {
	return Write(p.W, res)
}
