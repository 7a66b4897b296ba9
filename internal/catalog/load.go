package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

type LoadOptions struct {
	// An explicit location of the library. Relative paths are relative to
	// "ResolveDir".
	LibraryPath string

	// Where the host build resolves packages from. This is usually esbuild's
	// "AbsWorkingDir".
	ResolveDir string

	// Extra global package directories, like node's "NODE_PATH"
	NodePaths []string

	// The process working directory. This is the last place searched.
	ProcessDir string
}

var metadataNames = []string{"metadata.js", "metadata.json"}

// Load finds the library and parses its metadata. Locations are searched in
// this order:
//
//  1. the "LibraryPath" override
//  2. "node_modules" directories from "ResolveDir" upward, then "NodePaths"
//  3. "node_modules" in the process working directory
func Load(fsys afero.Fs, options LoadOptions) (*Catalog, error) {
	var tried []string

	for _, dir := range libraryCandidates(options) {
		for _, name := range metadataNames {
			path := filepath.Join(dir, "esm", name)
			tried = append(tried, path)
			if !isFile(fsys, path) {
				continue
			}

			features, languages, err := parseMetadataFile(fsys, path)
			if err != nil {
				return nil, &ResolutionError{Kind: "catalog", Name: path, Err: err}
			}

			return &Catalog{
				Features:     features,
				Languages:    languages,
				LibraryDir:   dir,
				Root:         filepath.Join(dir, "esm"),
				MetadataPath: path,
				Version:      readVersion(fsys, filepath.Join(dir, "package.json")),
				WorkingDir:   options.ResolveDir,
				fs:           fsys,
			}, nil
		}
	}

	return nil, &ResolutionError{Kind: "catalog", Name: PackageName, Tried: tried, Err: fs.ErrNotExist}
}

func libraryCandidates(options LoadOptions) []string {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if dir != "" && !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	if options.LibraryPath != "" {
		path := options.LibraryPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(options.ResolveDir, path)
		}
		add(filepath.Clean(path))
	}

	for _, dir := range nodeModulesDirs(options.ResolveDir) {
		add(filepath.Join(dir, PackageName))
	}
	for _, dir := range options.NodePaths {
		if dir != "" {
			add(filepath.Join(dir, PackageName))
		}
	}

	if options.ProcessDir != "" {
		add(filepath.Join(options.ProcessDir, "node_modules", PackageName))
	}

	return dirs
}

// NodePathsFromEnv splits the "NODE_PATH" environment variable.
func NodePathsFromEnv() []string {
	value := os.Getenv("NODE_PATH")
	if value == "" {
		return nil
	}
	return filepath.SplitList(value)
}

func readVersion(fsys afero.Fs, path string) string {
	contents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return ""
	}
	return gjson.GetBytes(contents, "version").String()
}

func parseMetadataFile(fsys afero.Fs, path string) ([]ModuleDefinition, []ModuleDefinition, error) {
	contents, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, nil, err
	}
	if filepath.Ext(path) == ".json" {
		return ParseMetadataJSON(string(contents))
	}
	return ParseMetadataJS(path, string(contents))
}

// ParseMetadataJS evaluates the library's "metadata.js" file. It may be
// written either as an ES module or as CommonJS, so it's converted to
// CommonJS first and then run with "module" and "exports" bindings.
func ParseMetadataJS(path string, contents string) ([]ModuleDefinition, []ModuleDefinition, error) {
	result := api.Transform(contents, api.TransformOptions{
		Format:     api.FormatCommonJS,
		Loader:     api.LoaderJS,
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		if loc := msg.Location; loc != nil {
			return nil, nil, fmt.Errorf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, msg.Text)
		}
		return nil, nil, errors.New(msg.Text)
	}

	vm := goja.New()
	module := vm.NewObject()
	exports := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, nil, err
	}
	if err := vm.Set("module", module); err != nil {
		return nil, nil, err
	}
	if err := vm.Set("exports", exports); err != nil {
		return nil, nil, err
	}

	if _, err := vm.RunScript(path, string(result.Code)); err != nil {
		return nil, nil, fmt.Errorf("evaluating metadata: %w", err)
	}
	value, err := vm.RunString(`JSON.stringify({
		features: module.exports.features || [],
		languages: module.exports.languages || []
	})`)
	if err != nil {
		return nil, nil, fmt.Errorf("reading metadata exports: %w", err)
	}

	return ParseMetadataJSON(value.String())
}

// ParseMetadataJSON parses metadata in the form
// {"features": [...], "languages": [...]}.
func ParseMetadataJSON(text string) ([]ModuleDefinition, []ModuleDefinition, error) {
	if !gjson.Valid(text) {
		return nil, nil, errors.New("metadata is not valid JSON")
	}
	root := gjson.Parse(text)

	features, err := parseModules("features", root.Get("features"))
	if err != nil {
		return nil, nil, err
	}
	languages, err := parseModules("languages", root.Get("languages"))
	if err != nil {
		return nil, nil, err
	}
	return features, languages, nil
}

func parseModules(kind string, list gjson.Result) ([]ModuleDefinition, error) {
	if !list.Exists() {
		return nil, nil
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%q must be an array", kind)
	}

	var defs []ModuleDefinition
	var err error
	seen := make(map[string]bool)

	list.ForEach(func(_, item gjson.Result) bool {
		label := item.Get("label").String()
		if label == "" {
			err = fmt.Errorf("entry %d in %q has no label", len(defs), kind)
			return false
		}
		if seen[label] {
			err = fmt.Errorf("duplicate label %q in %q", label, kind)
			return false
		}
		seen[label] = true

		def := ModuleDefinition{Label: label}
		entry := item.Get("entry")
		if entry.IsArray() {
			for _, path := range entry.Array() {
				def.Entry = append(def.Entry, path.String())
			}
		} else if entry.Type == gjson.String {
			def.Entry = []string{entry.String()}
		}

		if worker := item.Get("worker"); worker.IsObject() {
			def.Worker = &Worker{
				ID:    worker.Get("id").String(),
				Entry: worker.Get("entry").String(),
			}
		}

		defs = append(defs, def)
		return true
	})

	return defs, err
}
