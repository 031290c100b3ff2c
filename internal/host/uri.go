package host

import (
	"net/url"
	"path/filepath"
	"strings"
)

// uriToPath resolves a file: URI to an absolute filesystem path. Other
// schemes (untitled:, vscode-notebook:) have no path and come back empty.
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	path := uri
	if strings.Contains(uri, ":") {
		parsed, err := url.Parse(uri)
		if err != nil || parsed.Scheme != "file" {
			return ""
		}
		path = parsed.Path
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	if abs, err := filepath.Abs(filepath.FromSlash(path)); err == nil {
		return abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
