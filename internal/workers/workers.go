// Package workers computes the emitted file name of every worker bundle.
package workers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
)

// DefaultFilenameTemplate names workers after their entry, e.g.
// "vs/language/json/json.worker" => "json.worker.js".
const DefaultFilenameTemplate = "[name].worker.js"

type Entry struct {
	Label string

	// The module id passed to "getWorkerUrl"
	ID string

	// The worker's catalog entry, e.g. "vs/language/json/json.worker". This is
	// what "[name]", "[ext]", "[path]" and "[folder]" refer to. A ".js"
	// extension is dropped.
	Name string

	// Absolute path of the resolved source file
	Source string
}

// Entries returns one entry for every module that declares a worker, in the
// order given. Worker sources are resolved through the catalog.
func Entries(cat *catalog.Catalog, modules []catalog.ModuleDefinition) ([]Entry, error) {
	var entries []Entry
	for _, def := range modules {
		if def.Worker == nil {
			continue
		}
		source, err := cat.ResolveEntry(def.Worker.Entry)
		if err != nil {
			var resolveErr *catalog.ResolutionError
			if errors.As(err, &resolveErr) {
				resolveErr.Kind = "worker source"
				resolveErr.Name = fmt.Sprintf("%s (for %q)", def.Worker.Entry, def.Label)
			}
			return nil, err
		}
		entries = append(entries, Entry{
			Label:  def.Label,
			ID:     def.Worker.ID,
			Name:   strings.TrimSuffix(def.Worker.Entry, ".js"),
			Source: source,
		})
	}
	return entries, nil
}

// PathTable maps a module label to the file name of its worker bundle.
type PathTable map[string]string

// Labels returns every label in sorted order.
func (table PathTable) Labels() []string {
	labels := make([]string, 0, len(table))
	for label := range table {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// AliasFamily is a set of labels that share one worker. The canonical label
// owns the worker, the members reuse it.
type AliasFamily struct {
	Canonical string
	Members   []string
}

// Aliases lists languages that run the same worker code under another label.
// Adding a family here is all that's needed to support a new one.
var Aliases = []AliasFamily{
	{Canonical: "typescript", Members: []string{"javascript"}},
	{Canonical: "css", Members: []string{"less", "scss"}},
	{Canonical: "html", Members: []string{"handlebars", "razor"}},
}

// ApplyAliases copies each canonical label's file name to the members of its
// family. Labels that already have a worker of their own are never touched.
func (table PathTable) ApplyAliases() {
	for _, family := range Aliases {
		filename, ok := table[family.Canonical]
		if !ok {
			continue
		}
		for _, member := range family.Members {
			if _, ok := table[member]; !ok {
				table[member] = filename
			}
		}
	}
}
