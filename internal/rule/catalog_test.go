package rule

import (
	"testing"

	"github.com/starford/featlint/internal/layout"
)

func findRule(t *testing.T, s *Set, name string) Rule {
	t.Helper()
	for _, r := range s.Rules() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("rule %q not in catalog", name)
	return Rule{}
}

func TestCatalogOrder(t *testing.T) {
	s := Catalog(Config{LocatorClass: "com.app.Locator"})
	want := []string{
		NameLogInsteadOfSout,
		NameNoAssertCalls,
		NameNoLocatorCalls,
		NamePlatformLocatorMethods,
	}
	rules := s.Rules()
	if len(rules) != len(want) {
		t.Fatalf("len(rules) = %d, want %d", len(rules), len(want))
	}
	for i, name := range want {
		if rules[i].Name != name {
			t.Errorf("rules[%d].Name = %q, want %q", i, rules[i].Name, name)
		}
	}
}

func TestLogInsteadOfSout(t *testing.T) {
	r := findRule(t, Catalog(Config{}), NameLogInsteadOfSout)

	cases := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "println in class body",
			content: "public class X {\n  System.out.println(\"x\");\n}\n",
			want:    false,
		},
		{
			name:    "println commented out",
			content: "public class X {\n  // System.out.println(\"x\");\n}\n",
			want:    true,
		},
		{
			name:    "println before class declaration is header noise",
			content: "System.out.println(\"x\");\npublic class X {\n}\n",
			want:    true,
		},
		{
			name:    "indented print is still caught",
			content: "public class X {\n        System.out.print(\"x\");\n}\n",
			want:    false,
		},
		{
			name:    "no class declaration at all",
			content: "Feature: files\n  Scenario: upload\n",
			want:    true,
		},
	}
	for _, tc := range cases {
		if got := r.Check(tc.content); got != tc.want {
			t.Errorf("%s: Check = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNoAssertCalls(t *testing.T) {
	r := findRule(t, Catalog(Config{}), NameNoAssertCalls)

	if r.Check("public class X {\n  assertEquals(a, b);\n}\n") {
		t.Error("assert call in body should fail")
	}
	if !r.Check("public class X {\n  // assertEquals(a, b);\n}\n") {
		t.Error("commented assert should pass")
	}
	if !r.Check("import org.junit.Assert;\npublic class X {\n}\n") {
		t.Error("header-only mention should pass")
	}
}

func TestNoLocatorCalls(t *testing.T) {
	r := findRule(t, Catalog(Config{LocatorClass: "com.app.Locator"}), NameNoLocatorCalls)

	if r.Check("import com.app.Locator;\npublic class X {\n}\n") {
		t.Error("locator import in header should fail")
	}
	if !r.Check("// import com.app.Locator;\npublic class X {\n}\n") {
		t.Error("commented locator import should pass")
	}
	if !r.Check("public class X {\n  com.app.Locator.find(\"id\");\n}\n") {
		t.Error("only the header region is inspected")
	}
}

func TestNoLocatorCalls_FailsClosedWhenUnconfigured(t *testing.T) {
	r := findRule(t, Catalog(Config{}), NameNoLocatorCalls)

	// Without a configured qualifier the rule is non-compliant by
	// construction, whatever the content says.
	if r.Check("public class X {\n}\n") {
		t.Error("rule should fail closed without a locator class")
	}
	if r.Check("") {
		t.Error("rule should fail closed on empty content too")
	}
}

func TestPlatformLocatorMethods(t *testing.T) {
	r := findRule(t, Catalog(Config{}), NamePlatformLocatorMethods)

	if r.Check("public class X {\n  Locator.find(\"id\");\n}\n") {
		t.Error("bare Locator call should fail")
	}
	if !r.Check("public class X {\n  Locator.findPlatform(\"id\");\n}\n") {
		t.Error("Platform variant should pass")
	}
	if !r.Check("public class X {\n  Locator.findChildren(\"id\");\n}\n") {
		t.Error("Children variant should pass")
	}
	if !r.Check("public class X {\n  // Locator.find(\"id\");\n}\n") {
		t.Error("commented call should pass")
	}
	if !r.Check("public class X {\n  doSomethingElse();\n}\n") {
		t.Error("no locator calls means compliant")
	}
}

func TestForRole(t *testing.T) {
	s := Catalog(Config{LocatorClass: "com.app.Locator"})

	if got := s.ForRole(layout.RoleFeatures); len(got) != 0 {
		t.Errorf("Features role has %d rules, want 0", len(got))
	}

	steps := s.ForRole(layout.RoleSteps)
	wantSteps := []string{NameLogInsteadOfSout, NameNoAssertCalls, NameNoLocatorCalls}
	if len(steps) != len(wantSteps) {
		t.Fatalf("Steps role has %d rules, want %d", len(steps), len(wantSteps))
	}
	for i, name := range wantSteps {
		if steps[i].Name != name {
			t.Errorf("steps[%d] = %q, want %q (order must match catalog)", i, steps[i].Name, name)
		}
	}

	pages := s.ForRole(layout.RolePages)
	if len(pages) != 2 {
		t.Fatalf("Pages role has %d rules, want 2", len(pages))
	}
	if pages[0].Name != NameLogInsteadOfSout || pages[1].Name != NamePlatformLocatorMethods {
		t.Errorf("pages rules = %q, %q", pages[0].Name, pages[1].Name)
	}
}

func TestSetAddPreservesOrder(t *testing.T) {
	s := NewSet()
	s.Add(Rule{Name: "a", Roles: []layout.Role{layout.RoleSteps}, Check: func(string) bool { return true }})
	s.Add(Rule{Name: "b", Roles: []layout.Role{layout.RoleSteps}, Check: func(string) bool { return true }})
	rules := s.Rules()
	if rules[0].Name != "a" || rules[1].Name != "b" {
		t.Errorf("order = %q, %q", rules[0].Name, rules[1].Name)
	}
}
