// Package config holds the settings of the command-line tool. They come from
// an "esbuild-monaco.{yaml,yml,toml,json}" file, "MONACO_*" environment
// variables and flags, in increasing order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
	"github.com/evanw/esbuild-plugin-monaco/pkg/monaco"
	"github.com/evanw/esbuild/pkg/api"
)

type Config struct {
	Plugin PluginConfig `mapstructure:"plugin" yaml:"plugin" toml:"plugin" json:"plugin"`
	Build  BuildConfig  `mapstructure:"build" yaml:"build" toml:"build" json:"build"`
}

type PluginConfig struct {
	Languages       []string                   `mapstructure:"languages" yaml:"languages" toml:"languages" json:"languages"`
	CustomLanguages []catalog.ModuleDefinition `mapstructure:"custom_languages" yaml:"custom_languages" toml:"custom_languages" json:"custom_languages"`
	Features        []string                   `mapstructure:"features" yaml:"features" toml:"features" json:"features"`
	Filename        string                     `mapstructure:"filename" yaml:"filename" toml:"filename" json:"filename"`
	LibraryPath     string                     `mapstructure:"library_path" yaml:"library_path" toml:"library_path" json:"library_path"`
	PublicPath      string                     `mapstructure:"public_path" yaml:"public_path" toml:"public_path" json:"public_path"`
	GlobalAPI       bool                       `mapstructure:"global_api" yaml:"global_api" toml:"global_api" json:"global_api"`
}

type BuildConfig struct {
	EntryPoints []string `mapstructure:"entry_points" yaml:"entry_points" toml:"entry_points" json:"entry_points"`
	Outdir      string   `mapstructure:"outdir" yaml:"outdir" toml:"outdir" json:"outdir"`
	Outfile     string   `mapstructure:"outfile" yaml:"outfile" toml:"outfile" json:"outfile"`
	Format      string   `mapstructure:"format" yaml:"format" toml:"format" json:"format"`
	Minify      bool     `mapstructure:"minify" yaml:"minify" toml:"minify" json:"minify"`
	Sourcemap   bool     `mapstructure:"sourcemap" yaml:"sourcemap" toml:"sourcemap" json:"sourcemap"`
	PublicPath  string   `mapstructure:"public_path" yaml:"public_path" toml:"public_path" json:"public_path"`
	Manifest    string   `mapstructure:"manifest" yaml:"manifest" toml:"manifest" json:"manifest"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level" toml:"log_level" json:"log_level"`
}

func Default() Config {
	return Config{
		Plugin: PluginConfig{
			Languages:       []string{},
			CustomLanguages: []catalog.ModuleDefinition{},
			Features:        []string{},
			Filename:        monaco.DefaultFilename,
		},
		Build: BuildConfig{
			EntryPoints: []string{},
			Outdir:      "dist",
			Format:      "esm",
			LogLevel:    "warning",
		},
	}
}

// PluginOptions converts the plugin section. Relative paths are relative to
// the working directory.
func (c *Config) PluginOptions(workingDir string) monaco.Options {
	return monaco.Options{
		Languages:       c.Plugin.Languages,
		CustomLanguages: c.Plugin.CustomLanguages,
		Features:        c.Plugin.Features,
		Filename:        c.Plugin.Filename,
		LibraryPath:     c.Plugin.LibraryPath,
		PublicPath:      c.Plugin.PublicPath,
		GlobalAPI:       c.Plugin.GlobalAPI,
		WorkingDir:      workingDir,
	}
}

// BuildOptions converts the build section. Output is kept in memory so the
// caller decides where it goes.
func (c *Config) BuildOptions(workingDir string) (api.BuildOptions, error) {
	format, err := parseFormat(c.Build.Format)
	if err != nil {
		return api.BuildOptions{}, err
	}
	level, _, err := ParseLogLevel(c.Build.LogLevel)
	if err != nil {
		return api.BuildOptions{}, err
	}
	options := api.BuildOptions{
		EntryPoints:       c.Build.EntryPoints,
		Bundle:            true,
		Format:            format,
		Outdir:            c.Build.Outdir,
		Outfile:           c.Build.Outfile,
		PublicPath:        c.Build.PublicPath,
		MinifyWhitespace:  c.Build.Minify,
		MinifyIdentifiers: c.Build.Minify,
		MinifySyntax:      c.Build.Minify,
		AbsWorkingDir:     workingDir,
		LogLevel:          level,
		Write:             false,
	}
	if c.Build.Outfile != "" {
		options.Outdir = ""
	}
	if format == api.FormatESModule && len(c.Build.EntryPoints) > 1 && options.Outdir != "" {
		options.Splitting = true
	}
	if c.Build.Sourcemap {
		options.Sourcemap = api.SourceMapLinked
	}
	return options, nil
}

// ManifestPath is where the worker manifest is written, or empty if it isn't.
func (c *Config) ManifestPath(workingDir string) string {
	if c.Build.Manifest == "" || filepath.IsAbs(c.Build.Manifest) {
		return c.Build.Manifest
	}
	return filepath.Join(workingDir, c.Build.Manifest)
}

func parseFormat(text string) (api.Format, error) {
	switch strings.ToLower(text) {
	case "", "esm":
		return api.FormatESModule, nil
	case "iife":
		return api.FormatIIFE, nil
	case "cjs":
		return api.FormatCommonJS, nil
	default:
		return api.FormatDefault, fmt.Errorf("Invalid format %q (valid: esm, iife, cjs)", text)
	}
}

// ParseLogLevel returns both esbuild's level and the equivalent level for
// messages printed by the tool itself.
func ParseLogLevel(text string) (api.LogLevel, logger.LogLevel, error) {
	switch strings.ToLower(text) {
	case "verbose", "debug":
		return api.LogLevelDebug, logger.LevelDebug, nil
	case "info":
		return api.LogLevelInfo, logger.LevelInfo, nil
	case "", "warning":
		return api.LogLevelWarning, logger.LevelWarning, nil
	case "error":
		return api.LogLevelError, logger.LevelError, nil
	case "silent":
		return api.LogLevelSilent, logger.LevelSilent, nil
	default:
		return api.LogLevel(0), logger.LevelNone, fmt.Errorf("Invalid log level %q (valid: debug, info, warning, error, silent)", text)
	}
}
