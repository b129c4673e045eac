package rule

import (
	"log/slog"
	"strings"

	"github.com/starford/featlint/internal/layout"
)

// Rule names as they appear in reports.
const (
	NameLogInsteadOfSout       = "Log instead of sout"
	NameNoAssertCalls          = "No assert calls"
	NameNoLocatorCalls         = "No locator calls"
	NamePlatformLocatorMethods = "Use platform Locator methods"
)

// classDeclMarker begins the first top-level type declaration in a suite
// source file; everything before it is the import/header region.
const classDeclMarker = "public class"

// Config carries the external configuration the built-in rules depend on.
// It is injected once at catalog construction instead of read from the
// environment inside each predicate.
type Config struct {
	// LocatorClass is the fully qualified locator class, e.g.
	// "com.app.Locator". When empty, the "No locator calls" rule fails
	// closed with a diagnostic.
	LocatorClass string
}

// Catalog returns the built-in rule set in its fixed order.
func Catalog(cfg Config) *Set {
	return NewSet(
		logInsteadOfSout(),
		noAssertCalls(),
		noLocatorCalls(cfg.LocatorClass),
		platformLocatorMethods(),
	)
}

// logInsteadOfSout flags direct console prints in the class body.
func logInsteadOfSout() Rule {
	return Rule{
		Name:  NameLogInsteadOfSout,
		Roles: []layout.Role{layout.RoleInteractions, layout.RolePages, layout.RoleSteps},
		Check: func(content string) bool {
			for _, line := range bodyLines(content) {
				if isComment(line) {
					continue
				}
				if strings.HasPrefix(line, "System.out.print") {
					return false
				}
			}
			return true
		},
	}
}

// noAssertCalls flags assertion calls in step definitions; assertions
// belong in interactions.
func noAssertCalls() Rule {
	return Rule{
		Name:  NameNoAssertCalls,
		Roles: []layout.Role{layout.RoleSteps},
		Check: func(content string) bool {
			for _, line := range bodyLines(content) {
				if isComment(line) {
					continue
				}
				if strings.Contains(line, "assert") {
					return false
				}
			}
			return true
		},
	}
}

// noLocatorCalls flags imports of the locator class outside page objects.
// Only the header region (before the class declaration) is inspected.
func noLocatorCalls(locatorClass string) Rule {
	return Rule{
		Name:  NameNoLocatorCalls,
		Roles: []layout.Role{layout.RoleSteps, layout.RoleInteractions},
		Check: func(content string) bool {
			if locatorClass == "" {
				slog.Warn("locator class not configured, rule fails closed",
					slog.String("rule", NameNoLocatorCalls))
				return false
			}
			for _, line := range headerLines(content) {
				if isComment(line) {
					continue
				}
				if strings.HasPrefix(line, locatorClass) {
					return false
				}
			}
			return true
		},
	}
}

// platformLocatorMethods requires locator factory calls in page objects to
// go through the Platform or Children variants.
func platformLocatorMethods() Rule {
	return Rule{
		Name:  NamePlatformLocatorMethods,
		Roles: []layout.Role{layout.RolePages},
		Check: func(content string) bool {
			for _, line := range bodyLines(content) {
				if isComment(line) || !strings.Contains(line, "Locator.") {
					continue
				}
				if !strings.Contains(line, "Platform") && !strings.Contains(line, "Children") {
					return false
				}
			}
			return true
		},
	}
}

// lines splits content into trimmed lines.
func lines(content string) []string {
	raw := strings.Split(content, "\n")
	out := make([]string, len(raw))
	for i, l := range raw {
		out[i] = strings.TrimSpace(l)
	}
	return out
}

// bodyLines returns the trimmed lines starting at the first class
// declaration. Files without a declaration yield nothing.
func bodyLines(content string) []string {
	all := lines(content)
	for i, l := range all {
		if strings.HasPrefix(l, classDeclMarker) {
			return all[i:]
		}
	}
	return nil
}

// headerLines returns the trimmed lines before the first class declaration.
func headerLines(content string) []string {
	all := lines(content)
	for i, l := range all {
		if strings.HasPrefix(l, classDeclMarker) {
			return all[:i]
		}
	}
	return all
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "//")
}
