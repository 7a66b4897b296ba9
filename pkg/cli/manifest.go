package cli

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild-plugin-monaco/internal/config"
	"github.com/evanw/esbuild-plugin-monaco/pkg/monaco"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// The manifest lists every worker by label, for servers that need to know
// which files to serve or preload:
//
//	{
//	  "version": "0.50.0",
//	  "publicPath": "/static/",
//	  "workers": {
//	    "json": { "id": "vs/language/json/jsonWorker", "file": "json.worker.js", "path": "dist/json.worker.js" }
//	  }
//	}
func workerManifest(plugin *monaco.Plugin, cfg *config.Config, outdir string, cwd string) ([]byte, error) {
	table, err := plugin.WorkerFilenames()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string)
	for _, entry := range plugin.Workers() {
		ids[entry.Label] = entry.ID
	}

	publicPath := cfg.Plugin.PublicPath
	if publicPath == "" {
		publicPath = cfg.Build.PublicPath
	}

	json := []byte(`{"workers":{}}`)
	if json, err = sjson.SetBytes(json, "version", plugin.Catalog().Version); err != nil {
		return nil, err
	}
	if json, err = sjson.SetBytes(json, "publicPath", publicPath); err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(table))
	for label := range table {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		file := table[label]
		worker := map[string]string{
			"file": file,
			"path": relativePath(cwd, filepath.Join(outdir, filepath.FromSlash(file))),
		}
		if id, ok := ids[label]; ok {
			worker["id"] = id
		}
		if json, err = sjson.SetBytes(json, "workers."+escapePathComponent(label), worker); err != nil {
			return nil, err
		}
	}

	pretty := strings.TrimRight(gjson.GetBytes(json, "@pretty").Raw, "\n")
	return []byte(pretty + "\n"), nil
}

// Characters with a meaning in gjson/sjson paths
var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

func escapePathComponent(key string) string {
	return pathEscaper.Replace(key)
}
