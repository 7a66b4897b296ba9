package runtime_test

import (
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/evanw/esbuild-plugin-monaco/internal/logger"
	"github.com/evanw/esbuild-plugin-monaco/internal/runtime"
	"github.com/evanw/esbuild-plugin-monaco/internal/test"
	"github.com/evanw/esbuild-plugin-monaco/internal/workers"
	"github.com/evanw/esbuild/pkg/api"
)

// A page at https://example.com with just enough of the browser to create
// blob URLs
const browser = `
var self = { location: { protocol: "https:", host: "example.com" } };
var blobs = [];
function Blob(parts, options) {
  this.text = parts.join("");
  this.type = options.type;
}
var URL = {
  createObjectURL: function (blob) {
    blobs.push(blob);
    return "blob:https://example.com/" + blobs.length;
  }
};
`

type page struct {
	t  *testing.T
	vm *goja.Runtime
}

func newPage(t *testing.T, setup string) page {
	t.Helper()
	vm := goja.New()
	if _, err := vm.RunString(browser + setup); err != nil {
		t.Fatal(err)
	}
	return page{t: t, vm: vm}
}

func (p page) eval(code string) goja.Value {
	p.t.Helper()
	value, err := p.vm.RunString(code)
	if err != nil {
		p.t.Fatalf("%s\n\n%s", err, code)
	}
	return value
}

func (p page) workerURL(config runtime.Config, label string) string {
	p.t.Helper()
	return p.eval("(" + runtime.Code(config) + ").getWorkerUrl('ignored', " + quote(label) + ")").String()
}

func quote(text string) string {
	return `"` + text + `"`
}

var table = workers.PathTable{
	"json":                "json.worker.abc123.js",
	"editorWorkerService": "editor.worker.js",
}

func TestSameOriginPublicPath(t *testing.T) {
	p := newPage(t, "")
	url := p.workerURL(runtime.Config{Paths: table, PublicPath: "/static/"}, "json")
	test.AssertEqual(t, url, "/static/json.worker.abc123.js")

	url = p.workerURL(runtime.Config{Paths: table, PublicPath: "/static"}, "json")
	test.AssertEqual(t, url, "/static/json.worker.abc123.js")

	url = p.workerURL(runtime.Config{Paths: table, PublicPath: "https://example.com/assets/"}, "editorWorkerService")
	test.AssertEqual(t, url, "https://example.com/assets/editor.worker.js")
}

func TestEmptyPublicPath(t *testing.T) {
	p := newPage(t, "")
	test.AssertEqual(t, p.workerURL(runtime.Config{Paths: table}, "json"), "json.worker.abc123.js")
}

func TestCrossOriginUsesBlob(t *testing.T) {
	p := newPage(t, "")
	url := p.workerURL(runtime.Config{Paths: table, PublicPath: "https://cdn.example.com/"}, "json")
	if !strings.HasPrefix(url, "blob:") {
		t.Fatalf("expected a blob URL, got %q", url)
	}
	test.AssertEqual(t, p.eval("blobs.length").ToInteger(), int64(1))
	test.AssertEqual(t, p.eval("blobs[0].type").String(), "application/javascript")
	test.AssertEqual(t, p.eval("blobs[0].text").String(),
		`/*json*/importScripts("https://cdn.example.com/json.worker.abc123.js");`)
}

func TestProtocolRelativePublicPath(t *testing.T) {
	p := newPage(t, "")

	// Same host, so the qualified URL is used directly
	url := p.workerURL(runtime.Config{Paths: table, PublicPath: "//example.com/static/"}, "json")
	test.AssertEqual(t, url, "https://example.com/static/json.worker.abc123.js")
	test.AssertEqual(t, p.eval("blobs.length").ToInteger(), int64(0))

	// Different host
	url = p.workerURL(runtime.Config{Paths: table, PublicPath: "//cdn.example.com/static/"}, "json")
	if !strings.HasPrefix(url, "blob:") {
		t.Fatalf("expected a blob URL, got %q", url)
	}
	test.AssertEqual(t, p.eval("blobs[0].text").String(),
		`/*json*/importScripts("https://cdn.example.com/static/json.worker.abc123.js");`)
}

func TestDifferentPortIsCrossOrigin(t *testing.T) {
	p := newPage(t, "")
	url := p.workerURL(runtime.Config{Paths: table, PublicPath: "https://example.com:8080/"}, "json")
	if !strings.HasPrefix(url, "blob:") {
		t.Fatalf("expected a blob URL, got %q", url)
	}
}

func TestExplicitDefaultPortUsesBlob(t *testing.T) {
	p := newPage(t, "")
	url := p.workerURL(runtime.Config{Paths: table, PublicPath: "https://example.com:443/static/"}, "json")
	if !strings.HasPrefix(url, "blob:") {
		t.Fatalf("expected a blob URL, got %q", url)
	}
	test.AssertEqual(t, p.eval("blobs[0].text").String(),
		`/*json*/importScripts("https://example.com:443/static/json.worker.abc123.js");`)

	url = p.workerURL(runtime.Config{Paths: table, PublicPath: "HTTPS://EXAMPLE.COM/static/"}, "json")
	test.AssertEqual(t, url, "HTTPS://EXAMPLE.COM/static/json.worker.abc123.js")
}

func TestRunTimePublicPath(t *testing.T) {
	config := runtime.Config{Paths: table, BuildPublicPath: "/build/"}

	p := newPage(t, "")
	test.AssertEqual(t, p.workerURL(config, "json"), "/build/json.worker.abc123.js")

	p = newPage(t, `var `+runtime.PublicPathVariable+` = "/runtime/";`)
	test.AssertEqual(t, p.workerURL(config, "json"), "/runtime/json.worker.abc123.js")

	// The plugin option wins over the run-time variable
	config.PublicPath = "/plugin/"
	test.AssertEqual(t, p.workerURL(config, "json"), "/plugin/json.worker.abc123.js")
}

func TestGlobalAPI(t *testing.T) {
	p := newPage(t, "")
	test.AssertEqual(t, p.eval("("+runtime.Code(runtime.Config{Paths: table})+").globalAPI").ToBoolean(), false)
	test.AssertEqual(t, p.eval("("+runtime.Code(runtime.Config{Paths: table, GlobalAPI: true})+").globalAPI").ToBoolean(), true)
}

func TestModuleAssignsGlobal(t *testing.T) {
	p := newPage(t, "")
	p.eval(runtime.Module(runtime.Config{Paths: table, PublicPath: "/static/"}))
	url := p.eval(`self.MonacoEnvironment.getWorkerUrl("vs/language/json/jsonWorker", "json")`).String()
	test.AssertEqual(t, url, "/static/json.worker.abc123.js")
}

func TestCodeIsStable(t *testing.T) {
	a := runtime.Code(runtime.Config{Paths: workers.PathTable{"json": "json.worker.js", "css": "css.worker.js"}})
	b := runtime.Code(runtime.Config{Paths: workers.PathTable{"css": "css.worker.js", "json": "json.worker.js"}})
	test.AssertEqualWithDiff(t, a, b)

	if !strings.HasSuffix(a, `})({"css": "css.worker.js", "json": "json.worker.js"})`) {
		t.Fatalf("unexpected path table in:\n%s", a)
	}
	if !strings.Contains(a, `var pathPrefix = typeof __monaco_public_path__ === "string" ? __monaco_public_path__ : "";`) {
		t.Fatalf("unexpected public path in:\n%s", a)
	}

	a = runtime.Code(runtime.Config{Paths: workers.PathTable{}, PublicPath: "/a\"b/"})
	if !strings.Contains(a, `var pathPrefix = "/a\"b/";`) {
		t.Fatalf("unexpected public path in:\n%s", a)
	}
}

func TestBuildPublicPath(t *testing.T) {
	log := logger.NewDeferLog()
	test.AssertEqual(t, runtime.BuildPublicPath(log, nil), "")
	test.AssertEqual(t, runtime.BuildPublicPath(log, &api.BuildOptions{PublicPath: "/static/"}), "/static/")
	test.AssertEqual(t, len(log.Done()), 0)

	log = logger.NewDeferLog()
	test.AssertEqual(t, runtime.BuildPublicPath(log, &api.BuildOptions{PublicPath: "auto"}), "")
	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	test.AssertEqual(t, msgs[0].ID, logger.MsgID_Build_DynamicPublicPath)
	test.AssertEqual(t, msgs[0].Kind, logger.Warning)
}
