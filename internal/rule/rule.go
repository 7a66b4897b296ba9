// Package rule rewrites the editor's main entry so that it pulls in the
// selected features and languages.
package rule

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/evanw/esbuild-plugin-monaco/internal/helpers"
)

// EnvironmentModule is the virtual module that installs the editor's
// environment global. It's imported first so the global exists before any
// library code runs.
const EnvironmentModule = "monaco-environment"

// MainEntryFilter matches the library's main entry files. It's written for
// esbuild's "OnLoad" filter, which uses Go regular expression syntax.
const MainEntryFilter = `[\\/]esm[\\/]vs[\\/]editor[\\/]editor\.(api|main)\.js$`

var mainEntryRegexp = regexp.MustCompile(MainEntryFilter)

// IsMainEntry reports whether the rule applies to the file at this path.
func IsMainEntry(path string) bool {
	return mainEntryRegexp.MatchString(path)
}

type Rule struct {
	// Absolute paths imported before the original source
	Features []string

	// Absolute paths imported after the original source
	Languages []string
}

// Build resolves every static entry of the given modules. Nothing needs to be
// rewritten when both lists are empty, so no rule is returned.
func Build(features []catalog.ModuleDefinition, languages []catalog.ModuleDefinition, resolve func(string) (string, error)) (*Rule, error) {
	if len(features) == 0 && len(languages) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool)
	featurePaths, err := resolveEntries(features, resolve, seen)
	if err != nil {
		return nil, err
	}
	languagePaths, err := resolveEntries(languages, resolve, seen)
	if err != nil {
		return nil, err
	}
	return &Rule{Features: featurePaths, Languages: languagePaths}, nil
}

func resolveEntries(modules []catalog.ModuleDefinition, resolve func(string) (string, error), seen map[string]bool) ([]string, error) {
	var paths []string
	for _, def := range modules {
		for _, entry := range def.Entry {
			path, err := resolve(entry)
			if err != nil {
				var resolveErr *catalog.ResolutionError
				if errors.As(err, &resolveErr) {
					resolveErr.Name = fmt.Sprintf("%s (for %q)", entry, def.Label)
				}
				return nil, err
			}
			if seen[path] {
				continue
			}
			seen[path] = true
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// Apply returns the rewritten contents of a main entry file.
func (r *Rule) Apply(source string) string {
	j := helpers.Joiner{}
	addImport(&j, EnvironmentModule)
	for _, path := range r.Features {
		addImport(&j, path)
	}
	j.AddString(source)
	j.EnsureNewlineAtEnd()
	for _, path := range r.Languages {
		addImport(&j, path)
	}
	return j.Done()
}

func addImport(j *helpers.Joiner, path string) {
	j.AddString("import ")
	j.AddBytes(helpers.QuoteForJSON(path, false))
	j.AddString(";\n")
}
