package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild-plugin-monaco/internal/config"
	"github.com/evanw/esbuild-plugin-monaco/internal/exitcode"
	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
	"github.com/evanw/esbuild-plugin-monaco/pkg/monaco"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"
)

func newBuildCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [entry points]",
		Short: "Bundle the entry points and emit the editor's workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, g, args)
		},
	}

	flags := cmd.Flags()
	flags.String("outdir", "", "the output directory (default \"dist\")")
	flags.String("outfile", "", "the output file (for one entry point)")
	flags.String("format", "", "output format: esm, iife or cjs (default \"esm\")")
	flags.Bool("minify", false, "minify the bundle and the workers")
	flags.Bool("sourcemap", false, "emit source maps")
	flags.String("public-path", "", "esbuild's public path, also used for workers")
	flags.String("manifest", "", "write a JSON manifest of the emitted workers to this file")
	addPluginFlags(flags)
	return cmd
}

func runBuild(cmd *cobra.Command, g *globals, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, g, cwd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.Build.EntryPoints = args
	}
	if len(cfg.Build.EntryPoints) == 0 {
		return exitcode.Set(errors.New("No entry points were given"), exitcode.Unresolved)
	}

	options, err := cfg.BuildOptions(cwd)
	if err != nil {
		return exitcode.Set(err, exitcode.Unresolved)
	}
	_, level, _ := config.ParseLogLevel(cfg.Build.LogLevel)
	log := logger.NewStderrLog(logger.StderrOptions{LogLevel: level})
	defer log.Done()

	plugin, err := monaco.New(cfg.PluginOptions(cwd))
	if err != nil {
		return classify(err)
	}
	if err := plugin.Validate(&options); err != nil {
		return classify(err)
	}
	plugin.Apply(&options)

	result := api.Build(options)
	if len(result.Errors) > 0 {
		return exitcode.Set(fmt.Errorf("Build failed with %d error(s)", len(result.Errors)), exitcode.BuildFailed)
	}

	for _, outputFile := range result.OutputFiles {
		if err := os.MkdirAll(filepath.Dir(outputFile.Path), 0755); err != nil {
			return exitcode.Set(fmt.Errorf("Failed to create output directory: %w", err), exitcode.BuildFailed)
		}
		if err := os.WriteFile(outputFile.Path, outputFile.Contents, 0644); err != nil {
			return exitcode.Set(fmt.Errorf("Failed to write to output file: %w", err), exitcode.BuildFailed)
		}
		log.AddMsg(logger.Msg{Kind: logger.Debug, Text: "Wrote " + relativePath(cwd, outputFile.Path)})
	}
	log.AddMsg(logger.Msg{Kind: logger.Info, Text: fmt.Sprintf("Wrote %d files", len(result.OutputFiles))})

	if path := cfg.ManifestPath(cwd); path != "" {
		manifest, err := workerManifest(plugin, cfg, outputDir(options), cwd)
		if err != nil {
			return classify(err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return exitcode.Set(fmt.Errorf("Failed to create manifest directory: %w", err), exitcode.BuildFailed)
		}
		if err := os.WriteFile(path, manifest, 0644); err != nil {
			return exitcode.Set(fmt.Errorf("Failed to write manifest: %w", err), exitcode.BuildFailed)
		}
		log.AddMsg(logger.Msg{Kind: logger.Info, Text: "Wrote worker manifest to " + relativePath(cwd, path)})
	}
	return nil
}

func outputDir(options api.BuildOptions) string {
	dir := options.Outdir
	if dir == "" {
		dir = filepath.Dir(options.Outfile)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(options.AbsWorkingDir, dir)
	}
	return dir
}

func relativePath(base string, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
