// Package monaco is an esbuild plugin for the Monaco editor. It bundles only
// the editor features and languages that were asked for, builds a background
// worker for each of them, and tells the editor at run time where those
// workers live.
//
//	result := api.Build(api.BuildOptions{
//		EntryPoints: []string{"src/app.js"},
//		Bundle:      true,
//		Outdir:      "dist",
//		Plugins: []api.Plugin{monaco.NewPlugin(monaco.Options{
//			Languages: []string{"json", "typescript"},
//			Features:  []string{"!contextmenu"},
//		})},
//	})
package monaco

import (
	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/evanw/esbuild-plugin-monaco/internal/workers"
	"github.com/spf13/afero"
)

// PluginName is the name esbuild reports in messages from this plugin.
const PluginName = "monaco"

type ModuleDefinition = catalog.ModuleDefinition
type Worker = catalog.Worker
type WorkerEntry = workers.Entry
type Catalog = catalog.Catalog

// DefaultFilename is used when "Options.Filename" is empty.
const DefaultFilename = workers.DefaultFilenameTemplate

type Options struct {
	// Languages to include. All languages in the catalog are included when
	// this is empty. Unknown labels are dropped with a warning.
	Languages []string

	// Languages that aren't part of the catalog. They are always included.
	CustomLanguages []ModuleDefinition

	// Features to include. All features are included when this is empty.
	// A label starting with "!" excludes that feature and includes every
	// other one.
	Features []string

	// The file name template for workers. Supports "[name]", "[ext]",
	// "[path]", "[folder]", "[hash]" and "[contenthash]".
	Filename string

	// Where the "monaco-editor" package is. It's looked up like a bare import
	// when this is empty.
	LibraryPath string

	// The public path workers are loaded from. This overrides both esbuild's
	// "PublicPath" and the "__monaco_public_path__" run-time variable.
	PublicPath string

	// Whether the editor should also install itself as the "monaco" global
	GlobalAPI bool

	// Relative paths and packages are resolved from here. Defaults to the
	// process working directory.
	WorkingDir string

	// Defaults to the OS filesystem
	FS afero.Fs
}
