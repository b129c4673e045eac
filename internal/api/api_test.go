package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/featlint/internal/engine"
	"github.com/starford/featlint/internal/layout"
	"github.com/starford/featlint/internal/rule"
	"github.com/starford/featlint/internal/testutil"
)

// testEnv sets up a compliant project and a router.
// authToken == "" means auth disabled.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()

	root := testutil.TestProject(t, "files")
	testutil.WriteFile(t, testutil.SubdirPath(root, "files", layout.RoleSteps),
		"steps.java", "public class Steps {\n}\n")
	testutil.WriteFile(t, testutil.SubdirPath(root, "files", layout.RolePages),
		"page.java", "public class Page {\n  Locator.find(\"id\");\n}\n")

	set := rule.Catalog(rule.Config{LocatorClass: "com.app.Locator"})
	eng := engine.New(testutil.Segments(), set, nil)

	return NewRouter(eng, root, authToken != "", authToken)
}

func doLint(t *testing.T, router http.Handler, feature string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"feature": feature})
	req := httptest.NewRequest(http.MethodPost, "/lint", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListRules(t *testing.T) {
	router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/rules", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Rules []RuleInfo `json:"rules"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Rules) != 4 {
		t.Fatalf("len(rules) = %d, want 4", len(resp.Rules))
	}
	if resp.Rules[0].Name != rule.NameLogInsteadOfSout {
		t.Errorf("rules[0] = %q", resp.Rules[0].Name)
	}
}

func TestLintEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := doLint(t, router, "Files")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp LintResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Dirs) != 4 {
		t.Fatalf("len(dirs) = %d, want 4", len(resp.Dirs))
	}
	if resp.Dirs[0].Role != "Features" || !resp.Dirs[0].NoRules {
		t.Errorf("dirs[0] = %+v", resp.Dirs[0])
	}

	// The pages file uses a bare Locator call; that rule must be failed.
	var found bool
	for _, d := range resp.Dirs {
		if d.Role != "Pages" {
			continue
		}
		for _, o := range d.Outcomes {
			if o.Rule == rule.NamePlatformLocatorMethods {
				found = true
				if o.Passed {
					t.Error("platform locator rule should fail")
				}
			}
		}
	}
	if !found {
		t.Error("platform locator outcome missing from Pages block")
	}
}

func TestLintUnknownFeature(t *testing.T) {
	router := testEnv(t, "")

	w := doLint(t, router, "missing")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestLintBadRequest(t *testing.T) {
	router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/lint", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = doLint(t, router, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty feature status = %d, want 400", w.Code)
	}
}

func TestAuth(t *testing.T) {
	router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/rules", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/rules", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/rules", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}
