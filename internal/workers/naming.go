package workers

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/evanw/esbuild-plugin-monaco/internal/catalog"
	"github.com/spf13/afero"
)

var templateToken = regexp.MustCompile(`\[(name|ext|path|folder|hash|contenthash)(?::(\d+))?\]`)

// Filename reads the worker's source and interpolates the template with it.
func Filename(fsys afero.Fs, template string, entry Entry) (string, error) {
	contents, err := afero.ReadFile(fsys, entry.Source)
	if err != nil {
		return "", &catalog.ResolutionError{
			Kind:  "worker source",
			Name:  entry.Source,
			Tried: []string{entry.Source},
			Err:   err,
		}
	}
	return Interpolate(template, entry.Name, contents), nil
}

// ContentHash is the hex encoded xxhash64 of the contents.
func ContentHash(contents []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(contents))
}

// Interpolate fills in a file name template:
//
//	[name]        base name without the last extension ("json" for "json.worker")
//	[ext]         the last extension without the dot ("worker")
//	[path]        the directory with a trailing slash ("vs/language/json/")
//	[folder]      the last directory ("json")
//	[hash]        the content hash, "[hash:8]" keeps the first 8 characters
//	[contenthash] the same as "[hash]"
//
// The result only depends on the template, the entry name and the contents.
func Interpolate(template string, name string, contents []byte) string {
	name = strings.ReplaceAll(name, "\\", "/")
	dir, base := path.Split(name)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	folder := path.Base(strings.TrimSuffix(dir, "/"))
	if dir == "" {
		folder = ""
	}

	var hash string
	return templateToken.ReplaceAllStringFunc(template, func(token string) string {
		match := templateToken.FindStringSubmatch(token)
		switch match[1] {
		case "name":
			return stem
		case "ext":
			return strings.TrimPrefix(ext, ".")
		case "path":
			return dir
		case "folder":
			return folder
		}

		if hash == "" {
			hash = ContentHash(contents)
		}
		if match[2] != "" {
			if n, err := strconv.Atoi(match[2]); err == nil && n > 0 && n < len(hash) {
				return hash[:n]
			}
		}
		return hash
	})
}
