// Package pathutil provides path resolution against a base directory and
// common-prefix computation over sets of paths.
package pathutil

import (
	"path/filepath"
	"strings"
)

// Resolve returns p unchanged if it is absolute, otherwise joins it onto
// base. The result is cleaned in either case.
func Resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// CommonPath computes the longest run of leading path segments shared by
// every input, comparing segment by segment from the root. It returns the
// shared segments joined with "/" and a trailing "/", or the empty string
// when there are no inputs or the first segments already differ.
//
// Absolute inputs share the empty root segment, so absolute paths with no
// further agreement yield "/":
//
//	CommonPath("/a/b/c/x.js", "/a/b/d/y.js") // "/a/b/"
//	CommonPath("/a/x.js", "/b/y.js")         // "/"
//	CommonPath("a/x.js", "/a/y.js")          // ""
func CommonPath(paths ...string) string {
	if len(paths) == 0 {
		return ""
	}

	split := make([][]string, len(paths))
	for i, p := range paths {
		split[i] = strings.Split(p, "/")
	}

	var common []string
	for i := 0; i < len(split[0]); i++ {
		segment := split[0][i]
		agreed := true
		for _, segs := range split[1:] {
			if i >= len(segs) || segs[i] != segment {
				agreed = false
				break
			}
		}
		if !agreed {
			break
		}
		common = append(common, segment)
	}

	if len(common) == 0 {
		return ""
	}
	return strings.Join(common, "/") + "/"
}

// CommonPathOfRecords collects the string value stored under key in each
// record and returns the CommonPath of the collected values. Records missing
// the key, or holding a non-string under it, are skipped.
func CommonPathOfRecords(key string, records []map[string]any) string {
	var paths []string
	for _, record := range records {
		if v, ok := record[key]; ok {
			if p, ok := v.(string); ok {
				paths = append(paths, p)
			}
		}
	}
	return CommonPath(paths...)
}

// Contains reports whether p is dir itself or lies beneath it. Both paths are
// cleaned before comparison; the check is lexical and does not follow
// symlinks.
func Contains(dir, p string) bool {
	dir = filepath.Clean(dir)
	p = filepath.Clean(p)
	if dir == p {
		return true
	}
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
