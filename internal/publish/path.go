package publish

import (
	"path"
	"strings"
)

// normalizePath cleans a model- or caller-supplied file path into a safe
// repository key. Absolute paths, parent traversal, and empty paths are
// rejected; the remote store is never handed a key it did not expect.
func normalizePath(p string) (string, bool) {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "/") || strings.ContainsRune(p, '\x00') {
		return "", false
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}
