package util

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// NormalizePath cleans a metadata path to forward-slash form. Extractor
// documents may contain Windows separators or leading "./".
func NormalizePath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "/")
}

// DirOf returns the parent directory of a normalized path, "" for top-level files.
func DirOf(p string) string {
	dir := path.Dir(NormalizePath(p))
	if dir == "." {
		return ""
	}
	return dir
}

// BaseNameNoExt returns the file base name with its extension stripped.
func BaseNameNoExt(p string) string {
	base := path.Base(NormalizePath(p))
	return strings.TrimSuffix(base, path.Ext(base))
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileWithDirs creates parent directories (0755) and writes the file with perm.
func WriteFileWithDirs(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}
