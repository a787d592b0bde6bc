package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// PathToURI converts an absolute filesystem path into an RFC 8089 file
// URI. If the conversion fails for any reason it falls back to a plain
// "file://<path>" string, matching the original client's behavior of
// never failing a document notification over a URI edge case.
func PathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "file://" + path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// URIToPath decodes a file URI back into a filesystem path. Non-file
// schemes or malformed URIs return an error; callers that encounter one
// while parsing a server response should skip the entry rather than fail
// the whole response.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("lsp: parse uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("lsp: not a file uri: %q", uri)
	}
	return filepath.FromSlash(u.Path), nil
}
