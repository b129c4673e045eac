// Package layout resolves the role-tagged subdirectories of a feature
// test suite within a project root.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/featlint/internal/apperr"
)

// Role classifies the purpose of a suite subdirectory. The set is closed:
// every feature is expected to provide exactly one directory per role.
type Role int

const (
	RoleFeatures Role = iota
	RoleInteractions
	RolePages
	RoleSteps
)

// Roles lists all roles in the fixed order used for scanning and reporting.
var Roles = []Role{RoleFeatures, RoleInteractions, RolePages, RoleSteps}

func (r Role) String() string {
	switch r {
	case RoleFeatures:
		return "Features"
	case RoleInteractions:
		return "Interactions"
	case RolePages:
		return "Pages"
	case RoleSteps:
		return "Steps"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// ParseRole converts a role name (as produced by String) back to a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("layout: unknown role %q", s)
}

// Segments holds the per-role path segments between the project root and
// the feature directory. All four must be configured.
type Segments struct {
	Features     string
	Interactions string
	Pages        string
	Steps        string
}

// ForRole returns the path segment configured for role.
func (s Segments) ForRole(r Role) string {
	switch r {
	case RoleFeatures:
		return s.Features
	case RoleInteractions:
		return s.Interactions
	case RolePages:
		return s.Pages
	case RoleSteps:
		return s.Steps
	}
	return ""
}

// Subdir is one role-tagged suite directory. The path is verified to
// exist when the Subdir is created and is read-only afterwards.
type Subdir struct {
	Path string
	Role Role
}

// NewSubdir verifies that path exists on disk and tags it with role.
func NewSubdir(path string, role Role) (Subdir, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Subdir{}, fmt.Errorf("layout: could not locate %s: %w", path, apperr.ErrNotFound)
		}
		return Subdir{}, fmt.Errorf("layout: stat %s: %w", path, err)
	}
	return Subdir{Path: path, Role: role}, nil
}

// Project is the resolved layout for one feature: the normalized feature
// name plus exactly one verified Subdir per role.
type Project struct {
	feature string
	subdirs []Subdir
}

// Resolve computes and verifies the four suite subdirectories for feature
// under root. The feature name is lowercased before path construction.
// The first missing directory aborts resolution with an error naming it.
func Resolve(root, feature string, seg Segments) (*Project, error) {
	feature = strings.ToLower(strings.TrimSpace(feature))
	if feature == "" {
		return nil, fmt.Errorf("layout: feature name is empty")
	}

	subdirs := make([]Subdir, 0, len(Roles))
	for _, role := range Roles {
		path := filepath.Join(root, seg.ForRole(role), feature)
		sub, err := NewSubdir(path, role)
		if err != nil {
			return nil, err
		}
		subdirs = append(subdirs, sub)
	}

	return &Project{feature: feature, subdirs: subdirs}, nil
}

// Feature returns the normalized (lowercase) feature name.
func (p *Project) Feature() string {
	return p.feature
}

// Subdirs returns the resolved subdirectories in fixed role order.
func (p *Project) Subdirs() []Subdir {
	return p.subdirs
}
