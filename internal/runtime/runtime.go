// Package runtime generates the code that tells the editor where its worker
// bundles live. The code runs in the browser before any editor code does.
package runtime

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild-plugin-monaco/internal/helpers"
	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
	"github.com/evanw/esbuild-plugin-monaco/internal/workers"
	"github.com/evanw/esbuild/pkg/api"
)

// GlobalName is the global the editor reads its environment from.
const GlobalName = "MonacoEnvironment"

// PublicPathVariable may be assigned by the page before the editor loads to
// pick the worker location at run time. A public path passed to the plugin
// takes precedence over it.
const PublicPathVariable = "__monaco_public_path__"

// DynamicPublicPath is esbuild's spelling of "figure it out at run time",
// which is not supported for workers.
const DynamicPublicPath = "auto"

type Config struct {
	Paths     workers.PathTable
	GlobalAPI bool

	// The public path passed to the plugin. Used literally when non-empty.
	PublicPath string

	// The public path of the host build, used when neither the plugin option
	// nor the run-time variable is set
	BuildPublicPath string
}

// The factory is ES5 so it works unmodified in every target esbuild supports.
// Cross-origin URLs can't be passed to "new Worker()", so those are wrapped in
// a same-origin blob that calls "importScripts" instead. Origins are compared
// as written, so an explicit default port ("https://example.com:443") counts
// as another origin and only costs an extra blob.
const factory = `(function (paths) {
  return {
    globalAPI: {{globalAPI}},
    getWorkerUrl: function (moduleId, label) {
      var pathPrefix = {{pathPrefix}};
      var result = (pathPrefix ? pathPrefix.replace(/\/$/, '') + '/' : '') + paths[label];
      if (/^\/\//.test(result)) {
        result = self.location.protocol + result;
      }
      var origin = /^((?:https?|file):\/\/[^\/?#]*)/i.exec(result);
      if (origin) {
        var currentOrigin = self.location.protocol + '//' + self.location.host;
        if (origin[1].toLowerCase() !== currentOrigin.toLowerCase()) {
          var js = '/*' + label + '*/importScripts(' + JSON.stringify(result) + ');';
          var blob = new Blob([js], { type: 'application/javascript' });
          return URL.createObjectURL(blob);
        }
      }
      return result;
    }
  };
})({{paths}})`

// Code returns an expression that evaluates to the editor environment object
// with "globalAPI" and "getWorkerUrl". It's a pure function of its input.
func Code(config Config) string {
	return strings.NewReplacer(
		"{{globalAPI}}", fmt.Sprintf("%t", config.GlobalAPI),
		"{{pathPrefix}}", pathPrefix(config),
		"{{paths}}", pathsObject(config.Paths),
	).Replace(factory)
}

// Module returns the source of a module that installs the environment as a
// global when it's evaluated.
func Module(config Config) string {
	return fmt.Sprintf("self[%s] = %s;\n", helpers.QuoteForJSON(GlobalName, false), Code(config))
}

func pathPrefix(config Config) string {
	if config.PublicPath != "" {
		return string(helpers.QuoteForJSON(config.PublicPath, false))
	}
	return fmt.Sprintf("typeof %s === \"string\" ? %s : %s",
		PublicPathVariable, PublicPathVariable, helpers.QuoteForJSON(config.BuildPublicPath, false))
}

func pathsObject(table workers.PathTable) string {
	sb := strings.Builder{}
	sb.WriteByte('{')
	for i, label := range table.Labels() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.Write(helpers.QuoteForJSON(label, false))
		sb.WriteString(": ")
		sb.Write(helpers.QuoteForJSON(table[label], false))
	}
	sb.WriteByte('}')
	return sb.String()
}

// BuildPublicPath returns the host build's public path if it's a static
// string. The dynamic "auto" value can't be used to locate workers, so it's
// reported and treated as empty.
func BuildPublicPath(log logger.Log, options *api.BuildOptions) string {
	if options == nil {
		return ""
	}
	if options.PublicPath == DynamicPublicPath {
		log.AddIDWithNotes(logger.MsgID_Build_DynamicPublicPath, logger.Warning,
			fmt.Sprintf("The public path %q is not supported for workers and will be ignored", options.PublicPath),
			[]string{fmt.Sprintf("Set the plugin's public path, or assign %q at run time before the editor loads.", PublicPathVariable)})
		return ""
	}
	return options.PublicPath
}
