package selection_test

import (
	"testing"

	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
	"github.com/evanw/esbuild-plugin-monaco/internal/selection"
	"github.com/evanw/esbuild-plugin-monaco/internal/test"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Features: []catalog.ModuleDefinition{
			{Label: "bracketMatching"},
			{Label: "contextmenu"},
			{Label: "find"},
			{Label: "folding"},
		},
		Languages: []catalog.ModuleDefinition{
			{Label: "css", Worker: &catalog.Worker{ID: "vs/language/css/cssWorker", Entry: "vs/language/css/css.worker"}},
			{Label: "json", Worker: &catalog.Worker{ID: "vs/language/json/jsonWorker", Entry: "vs/language/json/json.worker"}},
			{Label: "python"},
			{Label: "typescript", Worker: &catalog.Worker{ID: "vs/language/typescript/tsWorker", Entry: "vs/language/typescript/ts.worker"}},
		},
	}
}

func labelsOf(defs []catalog.ModuleDefinition) []string {
	labels := []string{}
	for _, def := range defs {
		labels = append(labels, def.Label)
	}
	return labels
}

func warningIDs(log logger.Log) []string {
	ids := []string{}
	for _, msg := range log.Done() {
		if msg.Kind == logger.Warning {
			ids = append(ids, logger.MsgIDToString(msg.ID))
		}
	}
	return ids
}

func TestEmptyRequestIncludesEverything(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	test.AssertStrings(t, labelsOf(selection.ResolveFeatures(log, cat, nil)), cat.FeatureLabels())
	test.AssertStrings(t, labelsOf(selection.ResolveLanguages(log, cat, nil, nil)), cat.LanguageLabels())
	test.AssertStrings(t, warningIDs(log), []string{})
}

func TestFeatureExclusions(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	features := selection.ResolveFeatures(log, cat, []string{"!contextmenu", "!folding"})
	test.AssertStrings(t, labelsOf(features), []string{"bracketMatching", "find"})
	test.AssertStrings(t, warningIDs(log), []string{})
}

func TestFeatureExclusionsIgnorePlainSelectors(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	features := selection.ResolveFeatures(log, cat, []string{"find", "!contextmenu", "bracketMatching"})
	test.AssertStrings(t, labelsOf(features), []string{"bracketMatching", "find", "folding"})
	test.AssertStrings(t, warningIDs(log), []string{"ignored-feature-selector"})
}

func TestUnknownExclusionWarns(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	features := selection.ResolveFeatures(log, cat, []string{"!nope"})
	test.AssertStrings(t, labelsOf(features), cat.FeatureLabels())
	test.AssertStrings(t, warningIDs(log), []string{"unknown-feature"})
}

func TestPlainFeaturesKeepOrder(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	features := selection.ResolveFeatures(log, cat, []string{"folding", "missing", "bracketMatching"})
	test.AssertStrings(t, labelsOf(features), []string{"folding", "bracketMatching"})
	test.AssertStrings(t, warningIDs(log), []string{"unknown-feature"})
}

func TestLanguagesDropUnmatched(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	languages := selection.ResolveLanguages(log, cat, []string{"x", "python", "y"}, nil)
	test.AssertStrings(t, labelsOf(languages), []string{"python"})
	test.AssertStrings(t, warningIDs(log), []string{"unknown-language", "unknown-language"})
}

func TestLanguagesKeepRequestedOrder(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	languages := selection.ResolveLanguages(log, cat, []string{"typescript", "css"}, nil)
	test.AssertStrings(t, labelsOf(languages), []string{"typescript", "css"})
}

func TestDuplicateLanguagesAreKept(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	languages := selection.ResolveLanguages(log, cat, []string{"json", "css", "json"}, nil)
	test.AssertStrings(t, labelsOf(languages), []string{"json", "css", "json"})
	test.AssertStrings(t, warningIDs(log), []string{"duplicate-label"})
}

func TestCustomLanguagesAppended(t *testing.T) {
	cat := testCatalog()
	custom := []catalog.ModuleDefinition{
		{Label: "graphql", Entry: []string{"monaco-graphql/esm/monaco.contribution"}},
	}

	log := logger.NewDeferLog()
	test.AssertStrings(t, labelsOf(selection.ResolveLanguages(log, cat, []string{"json"}, custom)),
		[]string{"json", "graphql"})
	test.AssertStrings(t, labelsOf(selection.ResolveLanguages(log, cat, nil, custom)),
		[]string{"css", "json", "python", "typescript", "graphql"})
}

func TestTypoSuggestion(t *testing.T) {
	cat := testCatalog()
	log := logger.NewDeferLog()

	languages := selection.ResolveLanguages(log, cat, []string{"pyhton"}, nil)
	test.AssertEqual(t, len(languages), 0)

	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	test.AssertEqual(t, msgs[0].Text, `Unknown language "pyhton" will not be included`)
	test.AssertStrings(t, msgs[0].Notes, []string{`Did you mean "python" instead?`})
}
