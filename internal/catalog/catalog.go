// Package catalog describes the optional modules that ship with the editor
// library: every language and editor feature, and the background worker that
// some of them need.
package catalog

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// PackageName is the npm package the catalog is loaded from.
const PackageName = "monaco-editor"

type Worker struct {
	// A module id such as "vs/language/json/jsonWorker". It is passed to the
	// runtime's "getWorkerUrl" as its first argument.
	ID string `json:"id" mapstructure:"id" yaml:"id" toml:"id"`

	// The worker's source, either relative to the library's "esm" directory
	// ("vs/language/json/json.worker") or any path accepted by "ResolveEntry".
	Entry string `json:"entry" mapstructure:"entry" yaml:"entry" toml:"entry"`
}

type ModuleDefinition struct {
	Label  string   `json:"label" mapstructure:"label" yaml:"label" toml:"label"`
	Entry  []string `json:"entry,omitempty" mapstructure:"entry" yaml:"entry,omitempty" toml:"entry,omitempty"`
	Worker *Worker  `json:"worker,omitempty" mapstructure:"worker" yaml:"worker,omitempty" toml:"worker,omitempty"`
}

// EditorModule is the core editor service. It is part of every build because
// the editor itself always needs its worker.
var EditorModule = ModuleDefinition{
	Label: "editorWorkerService",
	Worker: &Worker{
		ID:    "vs/editor/editor",
		Entry: "vs/editor/editor.worker",
	},
}

type Catalog struct {
	Features  []ModuleDefinition
	Languages []ModuleDefinition

	// The package directory ("node_modules/monaco-editor") and its "esm"
	// directory, which "vs/..." entries are relative to
	LibraryDir string
	Root       string

	MetadataPath string

	// The package version from "package.json", or empty if it's unknown
	Version string

	// Relative and bare entries are resolved from here
	WorkingDir string

	fs afero.Fs
}

func (c *Catalog) Feature(label string) (ModuleDefinition, bool) {
	return find(c.Features, label)
}

func (c *Catalog) Language(label string) (ModuleDefinition, bool) {
	return find(c.Languages, label)
}

func (c *Catalog) FeatureLabels() []string {
	return labels(c.Features)
}

func (c *Catalog) LanguageLabels() []string {
	return labels(c.Languages)
}

func find(defs []ModuleDefinition, label string) (ModuleDefinition, bool) {
	for _, def := range defs {
		if def.Label == label {
			return def, true
		}
	}
	return ModuleDefinition{}, false
}

func labels(defs []ModuleDefinition) []string {
	result := make([]string, 0, len(defs))
	for _, def := range defs {
		result = append(result, def.Label)
	}
	return result
}

func (c *Catalog) filesystem() afero.Fs {
	if c.fs == nil {
		return afero.NewOsFs()
	}
	return c.fs
}

// ResolveEntry turns a module entry into an absolute file path:
//
//	"/abs/path/file.js"           => used as-is
//	"vs/language/json/json.worker" => "<Root>/vs/language/json/json.worker.js"
//	"./src/my.worker.js"          => relative to "WorkingDir"
//	"some-package/dist/worker"    => looked up in "node_modules" directories
//
// A ".js" extension is tried when the path as written doesn't exist.
func (c *Catalog) ResolveEntry(entry string) (string, error) {
	var candidates []string
	slashed := filepath.ToSlash(entry)

	switch {
	case filepath.IsAbs(entry):
		candidates = append(candidates, entry)

	case strings.HasPrefix(slashed, "vs/"):
		candidates = append(candidates, filepath.Join(c.Root, filepath.FromSlash(slashed)))

	case strings.HasPrefix(slashed, "./") || strings.HasPrefix(slashed, "../"):
		candidates = append(candidates, filepath.Join(c.WorkingDir, filepath.FromSlash(slashed)))

	default:
		for _, dir := range nodeModulesDirs(c.WorkingDir) {
			candidates = append(candidates, filepath.Join(dir, filepath.FromSlash(slashed)))
		}
		if c.LibraryDir != "" {
			// Packages installed next to the library itself
			candidates = append(candidates, filepath.Join(filepath.Dir(c.LibraryDir), filepath.FromSlash(slashed)))
		}
	}

	fsys := c.filesystem()
	var tried []string
	for _, candidate := range candidates {
		for _, path := range []string{candidate, candidate + ".js"} {
			tried = append(tried, path)
			if isFile(fsys, path) {
				return path, nil
			}
		}
	}

	return "", &ResolutionError{Kind: "module", Name: entry, Tried: tried, Err: fs.ErrNotExist}
}

func isFile(fsys afero.Fs, path string) bool {
	info, err := fsys.Stat(path)
	return err == nil && !info.IsDir()
}

// Returns every "node_modules" directory that node would search when
// resolving a bare import from "dir", closest first
func nodeModulesDirs(dir string) []string {
	var dirs []string
	if dir == "" {
		return dirs
	}
	for {
		if filepath.Base(dir) != "node_modules" {
			dirs = append(dirs, filepath.Join(dir, "node_modules"))
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dirs
		}
		dir = parent
	}
}

// FS is the filesystem the catalog was loaded from. Worker sources are read
// from it too.
func (c *Catalog) FS() afero.Fs {
	return c.filesystem()
}
