// Package scan evaluates a rule set against one suite subdirectory.
package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/featlint/internal/layout"
	"github.com/starford/featlint/internal/rule"
)

// eligibleExts are the file extensions subject to rule evaluation. All
// other directory entries are ignored without being opened.
var eligibleExts = map[string]struct{}{
	".feature": {},
	".java":    {},
	".js":      {},
}

// Eligible reports whether the file at path would be scanned.
func Eligible(path string) bool {
	_, ok := eligibleExts[filepath.Ext(path)]
	return ok
}

// Result holds the outcome of scanning one subdirectory.
type Result struct {
	Subdir layout.Subdir
	// Rules are the applicable rules in catalog order. Empty means no
	// rules apply to this directory's role and nothing was scanned.
	Rules []rule.Rule
	// Outcomes maps rule name to compliance: true iff every eligible
	// file satisfied the rule.
	Outcomes map[string]bool
}

// NoRules reports whether the subdirectory had no applicable rules.
func (r *Result) NoRules() bool {
	return len(r.Rules) == 0
}

// Dir applies every rule in set whose roles include sub's role to each
// eligible file in sub. Outcomes start compliant and only ever flip to
// non-compliant; a rule stays failed once any file violates it.
//
// An unreadable directory or file aborts the scan with an error; there is
// no per-file recovery.
func Dir(sub layout.Subdir, set *rule.Set) (*Result, error) {
	res := &Result{
		Subdir: sub,
		Rules:  set.ForRole(sub.Role),
	}
	if res.NoRules() {
		return res, nil
	}

	res.Outcomes = make(map[string]bool, len(res.Rules))
	for _, r := range res.Rules {
		res.Outcomes[r.Name] = true
	}

	entries, err := os.ReadDir(sub.Path)
	if err != nil {
		return nil, fmt.Errorf("scan: read dir %s: %w", sub.Path, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !Eligible(entry.Name()) {
			continue
		}
		path := filepath.Join(sub.Path, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("scan: read file %s: %w", path, err)
		}
		content := string(data)
		for _, r := range res.Rules {
			if !r.Check(content) {
				res.Outcomes[r.Name] = false
			}
		}
	}

	return res, nil
}
