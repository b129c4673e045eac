// Package engine orchestrates layout resolution, scanning, and reporting
// for one lint run.
package engine

import (
	"log/slog"

	"github.com/starford/featlint/internal/history"
	"github.com/starford/featlint/internal/layout"
	"github.com/starford/featlint/internal/rule"
	"github.com/starford/featlint/internal/scan"
)

// Reporter consumes one subdirectory's scan result. Results are delivered
// in fixed role order, each immediately after its directory is scanned.
type Reporter interface {
	Report(res *scan.Result) error
}

// Collector is a Reporter that retains results in order, for callers that
// render to JSON or store runs instead of streaming text.
type Collector struct {
	Results []*scan.Result
}

func (c *Collector) Report(res *scan.Result) error {
	c.Results = append(c.Results, res)
	return nil
}

// Engine runs the scan pipeline for a configured suite layout.
type Engine struct {
	segments layout.Segments
	rules    *rule.Set
	hist     *history.DB
	logger   *slog.Logger
}

// New creates an engine over the given layout segments and rule set.
func New(seg layout.Segments, set *rule.Set, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{segments: seg, rules: set, logger: logger}
}

// SetHistory enables run recording into db. A nil db disables it.
func (e *Engine) SetHistory(db *history.DB) {
	e.hist = db
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() *rule.Set {
	return e.rules
}

// Segments returns the configured layout segments.
func (e *Engine) Segments() layout.Segments {
	return e.segments
}

// Lint resolves the feature layout under root and scans each subdirectory
// in fixed role order, delivering every result to rep as it is produced.
// The first discovery or I/O error aborts the remaining sequence. Rule
// failures are informational and never produce an error.
func (e *Engine) Lint(root, feature string, rep Reporter) error {
	proj, err := layout.Resolve(root, feature, e.segments)
	if err != nil {
		return err
	}

	var results []*scan.Result
	for _, sub := range proj.Subdirs() {
		res, err := scan.Dir(sub, e.rules)
		if err != nil {
			return err
		}
		if rep != nil {
			if err := rep.Report(res); err != nil {
				return err
			}
		}
		results = append(results, res)
	}

	if e.hist != nil {
		if _, err := e.hist.RecordRun(proj.Feature(), results); err != nil {
			// History is best-effort; a failed write must not fail the scan.
			e.logger.Warn("history record failed",
				slog.String("feature", proj.Feature()),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// Collect runs Lint and returns the per-directory results in order.
func (e *Engine) Collect(root, feature string) ([]*scan.Result, error) {
	var c Collector
	if err := e.Lint(root, feature, &c); err != nil {
		return nil, err
	}
	return c.Results, nil
}
