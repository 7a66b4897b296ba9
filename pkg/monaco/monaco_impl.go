package monaco

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
	"github.com/evanw/esbuild-plugin-monaco/internal/registrar"
	"github.com/evanw/esbuild-plugin-monaco/internal/rule"
	"github.com/evanw/esbuild-plugin-monaco/internal/runtime"
	"github.com/evanw/esbuild-plugin-monaco/internal/selection"
	"github.com/evanw/esbuild-plugin-monaco/internal/workers"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
)

const environmentNamespace = "monaco"

// The options after defaults have been filled in. Nothing changes these after
// construction, which lets one plugin serve several builds at once.
type resolvedOptions struct {
	filename   string
	publicPath string
	globalAPI  bool
	workingDir string
	fs         afero.Fs
}

type Plugin struct {
	options   resolvedOptions
	catalog   *catalog.Catalog
	features  []catalog.ModuleDefinition
	languages []catalog.ModuleDefinition
	workers   []workers.Entry
	rule      *rule.Rule
	msgs      []logger.Msg
}

// The per-build state computed by "OnStart" and read by every other callback
type buildState struct {
	environment string
	regs        []registrar.Registration
	compiler    *registrar.ChildCompiler
}

func resolveOptions(options Options) (resolvedOptions, error) {
	resolved := resolvedOptions{
		filename:   options.Filename,
		publicPath: options.PublicPath,
		globalAPI:  options.GlobalAPI,
		workingDir: options.WorkingDir,
		fs:         options.FS,
	}
	if resolved.filename == "" {
		resolved.filename = DefaultFilename
	}
	if resolved.fs == nil {
		resolved.fs = afero.NewOsFs()
	}
	if resolved.workingDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return resolvedOptions{}, err
		}
		resolved.workingDir = cwd
	} else if abs, err := filepath.Abs(resolved.workingDir); err == nil {
		resolved.workingDir = abs
	}
	return resolved, nil
}

// New locates the library, resolves the requested features and languages, and
// resolves every file the plugin will need. Unknown labels produce warnings,
// which are available from "Messages". Files that can't be found are errors.
func New(options Options) (*Plugin, error) {
	resolved, err := resolveOptions(options)
	if err != nil {
		return nil, err
	}

	processDir, _ := os.Getwd()
	cat, err := catalog.Load(resolved.fs, catalog.LoadOptions{
		LibraryPath: options.LibraryPath,
		ResolveDir:  resolved.workingDir,
		NodePaths:   catalog.NodePathsFromEnv(),
		ProcessDir:  processDir,
	})
	if err != nil {
		return nil, err
	}

	log := logger.NewDeferLog()
	features := selection.ResolveFeatures(log, cat, options.Features)
	languages := selection.ResolveLanguages(log, cat, options.Languages, options.CustomLanguages)

	modules := make([]catalog.ModuleDefinition, 0, 1+len(features)+len(languages))
	modules = append(modules, catalog.EditorModule)
	modules = append(modules, features...)
	modules = append(modules, languages...)
	entries, err := workers.Entries(cat, modules)
	if err != nil {
		return nil, err
	}

	r, err := rule.Build(features, languages, cat.ResolveEntry)
	if err != nil {
		return nil, err
	}

	return &Plugin{
		options:   resolved,
		catalog:   cat,
		features:  features,
		languages: languages,
		workers:   entries,
		rule:      r,
		msgs:      log.Done(),
	}, nil
}

// NewPlugin is like "New" for use directly in a list of plugins. Errors from
// construction are reported when the build starts.
func NewPlugin(options Options) api.Plugin {
	p, err := New(options)
	if err != nil {
		return api.Plugin{
			Name: PluginName,
			Setup: func(build api.PluginBuild) {
				build.OnStart(func() (api.OnStartResult, error) {
					return api.OnStartResult{Errors: errorMessages(err)}, nil
				})
			},
		}
	}
	return p.Plugin()
}

// Apply adds the plugin to the build. Plugins that are already there are left
// alone.
func (p *Plugin) Apply(options *api.BuildOptions) {
	options.Plugins = append(options.Plugins, p.Plugin())
}

func (p *Plugin) Features() []ModuleDefinition {
	return slices.Clone(p.features)
}

func (p *Plugin) Languages() []ModuleDefinition {
	return slices.Clone(p.languages)
}

func (p *Plugin) Workers() []WorkerEntry {
	return slices.Clone(p.workers)
}

func (p *Plugin) Catalog() *Catalog {
	return p.catalog
}

// Messages returns the warnings from construction. They are also reported at
// the start of every build.
func (p *Plugin) Messages() []api.Message {
	return logger.ToAPIMessages(PluginName, p.msgs, logger.Warning)
}

// WorkerFilenames maps every label with a worker to the file the worker is
// written to, relative to the output directory. Labels that share a worker
// through an alias map to the same file.
func (p *Plugin) WorkerFilenames() (map[string]string, error) {
	table, err := p.pathTable()
	return table, err
}

func (p *Plugin) pathTable() (workers.PathTable, error) {
	table := workers.PathTable{}
	for _, entry := range p.workers {
		filename, err := workers.Filename(p.catalog.FS(), p.options.filename, entry)
		if err != nil {
			return nil, err
		}
		table[entry.Label] = filename
	}
	table.ApplyAliases()
	return table, nil
}

func (p *Plugin) plan(initial *api.BuildOptions) (workers.PathTable, []registrar.Registration, error) {
	table, err := p.pathTable()
	if err != nil {
		return nil, nil, err
	}
	regs, err := registrar.Plan(p.workers, table, registrar.HostFilenames(initial)...)
	if err != nil {
		return nil, nil, err
	}
	return table, regs, nil
}

// Validate reports the errors a build with these options would fail with
// before any code is bundled: worker sources that can't be read, workers whose
// file names collide with each other or with the "outfile", and file names
// outside the output directory. The options may be nil.
func (p *Plugin) Validate(options *api.BuildOptions) error {
	_, _, err := p.plan(options)
	return err
}

func (p *Plugin) prepare(log logger.Log, initial *api.BuildOptions) (*buildState, error) {
	table, regs, err := p.plan(initial)
	if err != nil {
		return nil, err
	}
	return &buildState{
		environment: runtime.Module(runtime.Config{
			Paths:           table,
			GlobalAPI:       p.options.globalAPI,
			PublicPath:      p.options.publicPath,
			BuildPublicPath: runtime.BuildPublicPath(log, initial),
		}),
		regs:     regs,
		compiler: registrar.NewChildCompiler(initial),
	}, nil
}

// Plugin returns the esbuild plugin. The returned value can be used for any
// number of builds, including concurrent ones and rebuilds of a context.
func (p *Plugin) Plugin() api.Plugin {
	return api.Plugin{
		Name:  PluginName,
		Setup: p.setup,
	}
}

func (p *Plugin) setup(build api.PluginBuild) {
	var mutex sync.RWMutex
	var state *buildState

	currentState := func() *buildState {
		mutex.RLock()
		defer mutex.RUnlock()
		return state
	}

	build.OnStart(func() (api.OnStartResult, error) {
		log := logger.NewDeferLog()
		for _, msg := range p.msgs {
			log.AddMsg(msg)
		}
		next, err := p.prepare(log, build.InitialOptions)

		mutex.Lock()
		state = next
		mutex.Unlock()

		msgs := log.Done()
		result := api.OnStartResult{
			Errors:   logger.ToAPIMessages(PluginName, msgs, logger.Error),
			Warnings: logger.ToAPIMessages(PluginName, msgs, logger.Warning),
		}
		if err != nil {
			result.Errors = append(result.Errors, errorMessages(err)...)
		}
		return result, nil
	})

	build.OnResolve(api.OnResolveOptions{Filter: "^" + rule.EnvironmentModule + "$"},
		func(args api.OnResolveArgs) (api.OnResolveResult, error) {
			return api.OnResolveResult{Path: rule.EnvironmentModule, Namespace: environmentNamespace}, nil
		})

	build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: environmentNamespace},
		func(args api.OnLoadArgs) (api.OnLoadResult, error) {
			st := currentState()
			if st == nil {
				return api.OnLoadResult{}, errors.New("The build was not started")
			}
			return api.OnLoadResult{
				Contents:   &st.environment,
				Loader:     api.LoaderJS,
				ResolveDir: p.options.workingDir,
			}, nil
		})

	build.OnLoad(api.OnLoadOptions{Filter: rule.MainEntryFilter, Namespace: "file"},
		func(args api.OnLoadArgs) (api.OnLoadResult, error) {
			// Nothing to add, so esbuild loads the file itself
			if p.rule == nil {
				return api.OnLoadResult{}, nil
			}

			source, err := afero.ReadFile(p.catalog.FS(), args.Path)
			if err != nil {
				return api.OnLoadResult{}, err
			}

			contents := p.rule.Apply(string(source))
			return api.OnLoadResult{
				Contents:   &contents,
				Loader:     api.LoaderJS,
				ResolveDir: filepath.Dir(args.Path),
			}, nil
		})

	build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
		st := currentState()
		if st == nil || len(result.Errors) > 0 {
			return api.OnEndResult{}, nil
		}

		if err := st.compiler.CheckOverwrites(st.regs, result.OutputFiles); err != nil {
			return api.OnEndResult{Errors: errorMessages(err)}, nil
		}

		outputs, err := registrar.Register(st.compiler, st.regs)
		result.OutputFiles = append(result.OutputFiles, registrar.Files(outputs)...)

		log := logger.NewDeferLog()
		for _, output := range outputs {
			logger.FromAPIMessages(log, output.Warnings, logger.MsgID_Build_WorkerWarning, logger.Warning)
		}
		end := api.OnEndResult{Warnings: logger.ToAPIMessages(PluginName, log.Done(), logger.Warning)}
		if err != nil {
			end.Errors = errorMessages(err)
		}
		return end, nil
	})
}

// Errors from a worker's own build keep esbuild's locations. Everything else
// becomes a single message.
func errorMessages(err error) []api.Message {
	var buildErr *registrar.BuildError
	if errors.As(err, &buildErr) {
		msgs := make([]api.Message, 0, 1+len(buildErr.Errors))
		msgs = append(msgs, api.Message{PluginName: PluginName, Text: buildErr.Error()})
		for _, msg := range buildErr.Errors {
			msg.PluginName = PluginName
			msgs = append(msgs, msg)
		}
		return msgs
	}
	return []api.Message{{PluginName: PluginName, Text: err.Error()}}
}
