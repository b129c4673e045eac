package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/featlint/internal/apperr"
)

func testSegments() Segments {
	return Segments{
		Features:     "test/features",
		Interactions: "test/interactions",
		Pages:        "test/pages",
		Steps:        "test/steps",
	}
}

func makeProject(t *testing.T, feature string) string {
	t.Helper()
	root := t.TempDir()
	seg := testSegments()
	for _, role := range Roles {
		if err := os.MkdirAll(filepath.Join(root, seg.ForRole(role), feature), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestResolve_AllRolesPresent(t *testing.T) {
	root := makeProject(t, "files")

	p, err := Resolve(root, "Files", testSegments())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Feature() != "files" {
		t.Errorf("feature = %q, want %q", p.Feature(), "files")
	}
	subs := p.Subdirs()
	if len(subs) != len(Roles) {
		t.Fatalf("len(subdirs) = %d, want %d", len(subs), len(Roles))
	}
	for i, role := range Roles {
		if subs[i].Role != role {
			t.Errorf("subdirs[%d].Role = %v, want %v", i, subs[i].Role, role)
		}
		want := filepath.Join(root, testSegments().ForRole(role), "files")
		if subs[i].Path != want {
			t.Errorf("subdirs[%d].Path = %q, want %q", i, subs[i].Path, want)
		}
	}
}

func TestResolve_MissingSubdir(t *testing.T) {
	root := makeProject(t, "files")
	missing := filepath.Join(root, testSegments().Pages, "files")
	if err := os.RemoveAll(missing); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(root, "files", testSegments())
	if err == nil {
		t.Fatal("expected error for missing subdirectory")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error %q does not identify the missing path %q", err, missing)
	}
}

func TestResolve_EmptyFeature(t *testing.T) {
	root := makeProject(t, "files")
	if _, err := Resolve(root, "   ", testSegments()); err == nil {
		t.Error("expected error for empty feature name")
	}
}

func TestRoleString(t *testing.T) {
	cases := map[Role]string{
		RoleFeatures:     "Features",
		RoleInteractions: "Interactions",
		RolePages:        "Pages",
		RoleSteps:        "Steps",
	}
	for role, want := range cases {
		if got := role.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(role), got, want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range Roles {
		got, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", role.String(), err)
		}
		if got != role {
			t.Errorf("ParseRole(%q) = %v, want %v", role.String(), got, role)
		}
	}
	if _, err := ParseRole("Nope"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestNewSubdir_FileStillExists(t *testing.T) {
	// A path that exists but is a file is accepted at layout time; the
	// scanner surfaces the problem when it tries to read entries.
	root := t.TempDir()
	path := filepath.Join(root, "features")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSubdir(path, RoleFeatures); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
