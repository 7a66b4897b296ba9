// Package cli implements the "esbuild-monaco" command: an esbuild build with
// the Monaco plugin applied, configured from a file, the environment and
// flags.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/evanw/esbuild-plugin-monaco/internal/config"
	"github.com/evanw/esbuild-plugin-monaco/internal/exitcode"
	"github.com/evanw/esbuild-plugin-monaco/internal/registrar"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version is set with -ldflags.
var Version = "dev"

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	err := fang.Execute(ctx, root,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	)
	return exitcode.Get(err)
}

type globals struct {
	configFile string
}

func NewRootCommand() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "esbuild-monaco",
		Short: "Bundle the Monaco editor with esbuild",
		Long: titleStyle.Render("esbuild-monaco") + subtitleStyle.Render(" - bundle the Monaco editor with esbuild") + `

Only the selected languages and editor features are bundled, and every
language service gets its own worker file next to the build output.

` + subtitleStyle.Render("Examples:") + `
  esbuild-monaco build src/app.js --languages json,css
  esbuild-monaco build src/app.js --features '!contextmenu' --manifest dist/workers.json
  esbuild-monaco resolve
  esbuild-monaco config --format toml`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&g.configFile, "config", "", "config file (default is ./"+config.FileName+".{yaml,yml,toml,json})")
	root.PersistentFlags().String("log-level", "", "debug, info, warning, error or silent")

	root.AddCommand(newBuildCommand(g))
	root.AddCommand(newResolveCommand(g))
	root.AddCommand(newConfigCommand(g))
	return root
}

// Flags and the config keys they override
var flagKeys = map[string]string{
	"log-level": "build.log_level",

	"languages":          "plugin.languages",
	"features":           "plugin.features",
	"filename":           "plugin.filename",
	"library-path":       "plugin.library_path",
	"worker-public-path": "plugin.public_path",
	"global-api":         "plugin.global_api",

	"outdir":      "build.outdir",
	"outfile":     "build.outfile",
	"format":      "build.format",
	"minify":      "build.minify",
	"sourcemap":   "build.sourcemap",
	"public-path": "build.public_path",
	"manifest":    "build.manifest",
}

func addPluginFlags(flags *pflag.FlagSet) {
	flags.StringSlice("languages", nil, "languages to include (default all)")
	flags.StringSlice("features", nil, "features to include, or exclude with \"!name\" (default all)")
	flags.String("filename", "", "worker file name template (default \"[name].worker.js\")")
	flags.String("library-path", "", "location of the monaco-editor package")
	flags.String("worker-public-path", "", "public path workers are loaded from at run time")
	flags.Bool("global-api", false, "also expose the editor as the \"monaco\" global")
}

func loadConfig(cmd *cobra.Command, g *globals, dir string) (*config.Config, error) {
	flags := make(map[string]*pflag.Flag)
	for name, key := range flagKeys {
		if flag := cmd.Flag(name); flag != nil {
			flags[key] = flag
		}
	}
	cfg, _, err := config.Load(config.LoadOptions{
		ConfigFile: g.configFile,
		Dir:        dir,
		Flags:      flags,
	})
	if err != nil {
		return nil, exitcode.Set(err, exitcode.Unresolved)
	}
	return cfg, nil
}

// Attaches the exit code that matches the kind of failure
func classify(err error) error {
	var collision *registrar.CollisionError
	var resolution *catalog.ResolutionError
	var outside *registrar.OutsideError
	switch {
	case errors.As(err, &collision):
		return exitcode.Set(err, exitcode.Collision)
	case errors.As(err, &resolution), errors.As(err, &outside):
		return exitcode.Set(err, exitcode.Unresolved)
	default:
		return exitcode.Set(err, exitcode.BuildFailed)
	}
}
