// Package registrar turns every worker into an entry point of its own and
// builds it next to the host build's output.
package registrar

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild-plugin-monaco/internal/workers"
	"github.com/evanw/esbuild/pkg/api"
)

type Registration struct {
	Label string
	ID    string

	// Absolute path of the worker's source
	Source string

	// Output path relative to the build's output directory
	Filename string
}

// CollisionError is returned when different worker sources would be written
// to the same file, or when a worker would replace one of the host build's
// own output files.
type CollisionError struct {
	Filename string
	Sources  []string

	// The host output the worker would overwrite, if any
	Output string
}

func (e *CollisionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("The worker %q from %s would overwrite the output file %s (change the file name template)",
			e.Filename, strings.Join(e.Sources, ", "), e.Output)
	}
	return fmt.Sprintf("Multiple workers are named %q: %s (include \"[path]\" or \"[hash]\" in the file name template)",
		e.Filename, strings.Join(e.Sources, ", "))
}

// OutsideError is returned when a worker's file name points outside the
// output directory, e.g. "[path]" of an entry starting with "../".
type OutsideError struct {
	Label    string
	Filename string
}

func (e *OutsideError) Error() string {
	return fmt.Sprintf("The %q worker would be written outside the output directory: %q", e.Label, e.Filename)
}

// IsOutside reports whether a file name relative to the output directory
// escapes it.
func IsOutside(filename string) bool {
	if filename == "" || filepath.IsAbs(filename) {
		return true
	}
	clean := path.Clean(filepath.ToSlash(filename))
	return path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../")
}

// Plan returns one registration per distinct worker. Entries that share both
// their source and their file name are built once. Reserved names are output
// files of the host build, relative to the output directory.
func Plan(entries []workers.Entry, table workers.PathTable, reserved ...string) ([]Registration, error) {
	var regs []Registration
	sources := make(map[string]string)
	taken := make(map[string]bool, len(reserved))
	for _, name := range reserved {
		taken[path.Clean(filepath.ToSlash(name))] = true
	}

	for _, entry := range entries {
		filename, ok := table[entry.Label]
		if !ok {
			return nil, fmt.Errorf("No file name was computed for the %q worker", entry.Label)
		}
		if IsOutside(filename) {
			return nil, &OutsideError{Label: entry.Label, Filename: filename}
		}
		if clean := path.Clean(filepath.ToSlash(filename)); taken[clean] {
			return nil, &CollisionError{Filename: filename, Sources: []string{entry.Source}, Output: clean}
		}
		if source, ok := sources[filename]; ok {
			if source == entry.Source {
				continue
			}
			colliding := []string{source, entry.Source}
			sort.Strings(colliding)
			return nil, &CollisionError{Filename: filename, Sources: colliding}
		}
		sources[filename] = entry.Source
		regs = append(regs, Registration{
			Label:    entry.Label,
			ID:       entry.ID,
			Source:   entry.Source,
			Filename: filename,
		})
	}

	return regs, nil
}

type Output struct {
	Registration Registration
	Files        []api.OutputFile
	Warnings     []api.Message
}

// Compiler builds a single worker. It's the only part of the host build tool
// the registrar depends on.
type Compiler interface {
	Compile(reg Registration) (Output, error)
}

// Register compiles every registration in order and stops at the first
// failure. The outputs of the registrations that succeeded are returned
// either way.
func Register(compiler Compiler, regs []Registration) ([]Output, error) {
	outputs := make([]Output, 0, len(regs))
	for _, reg := range regs {
		output, err := compiler.Compile(reg)
		if err != nil {
			return outputs, err
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

// Files flattens the files of every output.
func Files(outputs []Output) []api.OutputFile {
	var files []api.OutputFile
	for _, output := range outputs {
		files = append(files, output.Files...)
	}
	return files
}
