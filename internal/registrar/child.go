package registrar

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrNoOutputDirectory is returned when the host build has neither "outdir"
// nor "outfile", so there is nowhere to put the workers.
var ErrNoOutputDirectory = errors.New("Workers can only be emitted when \"outdir\" or \"outfile\" is set")

// BuildError holds the errors esbuild reported for one worker.
type BuildError struct {
	Registration Registration
	Errors       []api.Message
}

func (e *BuildError) Error() string {
	text := fmt.Sprintf("Failed to build the %q worker from %s", e.Registration.Label, e.Registration.Source)
	if len(e.Errors) > 0 {
		text += ": " + e.Errors[0].Text
		if len(e.Errors) > 1 {
			text += fmt.Sprintf(" (and %d more)", len(e.Errors)-1)
		}
	}
	return text
}

// ChildCompiler builds each worker with its own call to "api.Build". Workers
// are classic scripts, so every one of them is a single self-contained IIFE.
type ChildCompiler struct {
	initial api.BuildOptions
	outdir  string
}

func NewChildCompiler(initial *api.BuildOptions) *ChildCompiler {
	c := &ChildCompiler{}
	if initial == nil {
		return c
	}
	c.initial = *initial
	switch {
	case initial.Outdir != "":
		c.outdir = initial.Outdir
	case initial.Outfile != "":
		c.outdir = filepath.Dir(initial.Outfile)
	}
	if c.outdir != "" && !filepath.IsAbs(c.outdir) && initial.AbsWorkingDir != "" {
		c.outdir = filepath.Join(initial.AbsWorkingDir, c.outdir)
	}
	return c
}

// Outdir is where workers are written, or empty if there is no such place.
func (c *ChildCompiler) Outdir() string {
	return c.outdir
}

// HostFilenames returns the host build's output files that are known before
// it runs, relative to the directory workers are written to.
func HostFilenames(initial *api.BuildOptions) []string {
	if initial == nil || initial.Outfile == "" {
		return nil
	}
	base := filepath.Base(initial.Outfile)
	names := []string{base}
	switch initial.Sourcemap {
	case api.SourceMapLinked, api.SourceMapExternal, api.SourceMapInlineAndExternal:
		names = append(names, base+".map")
	}
	return names
}

func (c *ChildCompiler) outfile(reg Registration) string {
	return filepath.Join(c.outdir, filepath.FromSlash(reg.Filename))
}

// CheckOverwrites fails if a worker would be written to the same path as one
// of the host build's output files.
func (c *ChildCompiler) CheckOverwrites(regs []Registration, files []api.OutputFile) error {
	taken := make(map[string]bool, len(files))
	for _, file := range files {
		taken[absPath(file.Path)] = true
	}
	for _, reg := range regs {
		if outfile := absPath(c.outfile(reg)); taken[outfile] {
			return &CollisionError{Filename: reg.Filename, Sources: []string{reg.Source}, Output: outfile}
		}
	}
	return nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func (c *ChildCompiler) options(reg Registration) api.BuildOptions {
	initial := &c.initial
	return api.BuildOptions{
		LogLevel: api.LogLevelSilent,
		LogLimit: initial.LogLimit,

		Sourcemap:      initial.Sourcemap,
		SourceRoot:     initial.SourceRoot,
		SourcesContent: initial.SourcesContent,

		Target:    initial.Target,
		Engines:   initial.Engines,
		Supported: initial.Supported,

		Drop:              initial.Drop,
		MinifyWhitespace:  initial.MinifyWhitespace,
		MinifyIdentifiers: initial.MinifyIdentifiers,
		MinifySyntax:      initial.MinifySyntax,
		Charset:           initial.Charset,
		LegalComments:     initial.LegalComments,

		Define:     initial.Define,
		Pure:       initial.Pure,
		KeepNames:  initial.KeepNames,
		Conditions: initial.Conditions,
		NodePaths:  initial.NodePaths,

		Bundle:        true,
		Splitting:     false,
		Format:        api.FormatIIFE,
		Platform:      api.PlatformBrowser,
		AbsWorkingDir: initial.AbsWorkingDir,
		Outfile:       c.outfile(reg),
		EntryPoints:   []string{reg.Source},
		Write:         initial.Write,
	}
}

func (c *ChildCompiler) Compile(reg Registration) (Output, error) {
	if c.outdir == "" {
		return Output{}, ErrNoOutputDirectory
	}
	if IsOutside(reg.Filename) {
		return Output{}, &OutsideError{Label: reg.Label, Filename: reg.Filename}
	}
	result := api.Build(c.options(reg))
	if len(result.Errors) > 0 {
		return Output{}, &BuildError{Registration: reg, Errors: result.Errors}
	}
	return Output{
		Registration: reg,
		Files:        result.OutputFiles,
		Warnings:     result.Warnings,
	}, nil
}
