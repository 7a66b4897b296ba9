package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the config file name without its extension.
const FileName = "esbuild-monaco"

// EnvPrefix is prepended to environment variables, e.g. "MONACO_BUILD_OUTDIR"
// or "MONACO_PLUGIN_LANGUAGES=json,css".
const EnvPrefix = "MONACO"

// FileTypes are the config file extensions that are searched for, in order.
var FileTypes = []string{"yaml", "yml", "toml", "json"}

type LoadOptions struct {
	// An explicit config file. It's an error if it doesn't exist.
	ConfigFile string

	// Where to look for a config file when there's no explicit one
	Dir string

	// Flags bound to config keys, e.g. "plugin.languages"
	Flags map[string]*pflag.Flag
}

// Load returns the effective configuration and the config file it was read
// from, which is empty when there wasn't one.
func Load(options LoadOptions) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range options.Flags {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, "", err
		}
	}

	if options.ConfigFile != "" {
		v.SetConfigFile(options.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("Failed to read config file %q: %w", options.ConfigFile, err)
		}
	} else if path := findConfigFile(options.Dir); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("Failed to read config file %q: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("Failed to parse config: %w", err)
	}
	return &cfg, v.ConfigFileUsed(), nil
}

func findConfigFile(dir string) string {
	if dir == "" {
		return ""
	}
	for _, ext := range FileTypes {
		path := filepath.Join(dir, FileName+"."+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Every key needs a default so environment variables are seen by Unmarshal
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("plugin.languages", cfg.Plugin.Languages)
	v.SetDefault("plugin.custom_languages", cfg.Plugin.CustomLanguages)
	v.SetDefault("plugin.features", cfg.Plugin.Features)
	v.SetDefault("plugin.filename", cfg.Plugin.Filename)
	v.SetDefault("plugin.library_path", cfg.Plugin.LibraryPath)
	v.SetDefault("plugin.public_path", cfg.Plugin.PublicPath)
	v.SetDefault("plugin.global_api", cfg.Plugin.GlobalAPI)

	v.SetDefault("build.entry_points", cfg.Build.EntryPoints)
	v.SetDefault("build.outdir", cfg.Build.Outdir)
	v.SetDefault("build.outfile", cfg.Build.Outfile)
	v.SetDefault("build.format", cfg.Build.Format)
	v.SetDefault("build.minify", cfg.Build.Minify)
	v.SetDefault("build.sourcemap", cfg.Build.Sourcemap)
	v.SetDefault("build.public_path", cfg.Build.PublicPath)
	v.SetDefault("build.manifest", cfg.Build.Manifest)
	v.SetDefault("build.log_level", cfg.Build.LogLevel)
}
