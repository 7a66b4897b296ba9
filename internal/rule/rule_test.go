package rule_test

import (
	"errors"
	"testing"

	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/evanw/esbuild-plugin-monaco/internal/rule"
	"github.com/evanw/esbuild-plugin-monaco/internal/test"
)

func resolveUnder(root string) func(string) (string, error) {
	return func(entry string) (string, error) {
		return root + "/" + entry + ".js", nil
	}
}

func TestEmptyRule(t *testing.T) {
	r, err := rule.Build(nil, nil, resolveUnder("/lib"))
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Fatalf("expected no rule, got %+v", r)
	}
}

func TestApply(t *testing.T) {
	features := []catalog.ModuleDefinition{
		{Label: "find", Entry: []string{"vs/editor/contrib/find/browser/findController"}},
		{Label: "hover", Entry: []string{"vs/editor/contrib/hover/browser/hover", "vs/editor/contrib/hover/browser/markerHover"}},
	}
	languages := []catalog.ModuleDefinition{
		{Label: "json", Entry: []string{"vs/language/json/monaco.contribution"}},
	}
	r, err := rule.Build(features, languages, resolveUnder("/lib"))
	if err != nil {
		t.Fatal(err)
	}

	test.AssertEqualWithDiff(t, r.Apply("export * from './editor.api.js';"),
		`import "monaco-environment";
import "/lib/vs/editor/contrib/find/browser/findController.js";
import "/lib/vs/editor/contrib/hover/browser/hover.js";
import "/lib/vs/editor/contrib/hover/browser/markerHover.js";
export * from './editor.api.js';
import "/lib/vs/language/json/monaco.contribution.js";
`)
}

func TestApplyLanguagesOnly(t *testing.T) {
	languages := []catalog.ModuleDefinition{
		{Label: "css", Entry: []string{"vs/language/css/monaco.contribution"}},
		{Label: "less", Entry: []string{"vs/language/css/monaco.contribution"}},
	}
	r, err := rule.Build(nil, languages, resolveUnder("/lib"))
	if err != nil {
		t.Fatal(err)
	}
	test.AssertStrings(t, r.Languages, []string{"/lib/vs/language/css/monaco.contribution.js"})
	test.AssertEqualWithDiff(t, r.Apply("x();\n"),
		`import "monaco-environment";
x();
import "/lib/vs/language/css/monaco.contribution.js";
`)
}

func TestImportPathsAreQuoted(t *testing.T) {
	r, err := rule.Build(nil, []catalog.ModuleDefinition{{Label: "x", Entry: []string{`C:\lib\x`}}},
		func(entry string) (string, error) { return entry + ".js", nil })
	if err != nil {
		t.Fatal(err)
	}
	test.AssertEqualWithDiff(t, r.Apply(""), "import \"monaco-environment\";\nimport \"C:\\\\lib\\\\x.js\";\n")
}

func TestBuildReportsResolutionErrors(t *testing.T) {
	languages := []catalog.ModuleDefinition{{Label: "json", Entry: []string{"vs/language/json/missing"}}}
	_, err := rule.Build(nil, languages, func(entry string) (string, error) {
		return "", &catalog.ResolutionError{Kind: "module", Name: entry}
	})
	var resolveErr *catalog.ResolutionError
	if !errors.As(err, &resolveErr) {
		t.Fatalf("expected a resolution error, got %v", err)
	}
	test.AssertEqual(t, resolveErr.Name, `vs/language/json/missing (for "json")`)
}

func TestIsMainEntry(t *testing.T) {
	test.AssertEqual(t, rule.IsMainEntry("/app/node_modules/monaco-editor/esm/vs/editor/editor.main.js"), true)
	test.AssertEqual(t, rule.IsMainEntry("/app/node_modules/monaco-editor/esm/vs/editor/editor.api.js"), true)
	test.AssertEqual(t, rule.IsMainEntry(`C:\app\node_modules\monaco-editor\esm\vs\editor\editor.api.js`), true)
	test.AssertEqual(t, rule.IsMainEntry("/app/node_modules/monaco-editor/esm/vs/editor/editor.worker.js"), false)
	test.AssertEqual(t, rule.IsMainEntry("/app/node_modules/monaco-editor/min/vs/editor/editor.main.js"), false)
}
