// Package hydrate expands paths and glob patterns into concrete file lists.
//
// Callers hand it whatever the host passed across the plugin boundary: a
// single pattern string, a []string, or a []any that should contain strings.
// Bare paths (no wildcard syntax) are rewritten into recursive all-files
// globs so a directory input enumerates every descendant file. Expansion is
// delegated to doublestar; optional exclude patterns are matched with
// gobwas/glob against the absolute path of each candidate.
package hydrate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gobwas/glob"

	"github.com/Iron-Ham/packrat/internal/errors"
)

// Result holds the outcome of a hydration.
type Result struct {
	// Files are the matched file paths, concatenated in input order.
	// Directories are never included, even when a pattern matches one.
	Files []string

	// Patterns are the effective glob patterns actually expanded, after
	// bare-path rewriting, in input order.
	Patterns []string
}

// Option configures a hydration.
type Option func(*options)

type options struct {
	baseDir  string
	excludes []string
}

// WithBaseDir sets the directory relative patterns are resolved against.
// Defaults to the process working directory.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// WithExcludes adds glob patterns whose matches are dropped from the result.
// Patterns are matched against the absolute slash-separated path, with no
// separator handling, so "*.log" excludes log files at any depth.
func WithExcludes(patterns ...string) Option {
	return func(o *options) { o.excludes = append(o.excludes, patterns...) }
}

// Hydrate expands input into the list of matching files.
//
// input must be a string, a []string, or a []any whose elements are all
// strings; anything else fails with an InvalidArgumentError. Entries without
// wildcard syntax are treated as bare paths and rewritten to
// "<path>/**/*" with exactly one trailing separator before the recursive
// pattern, so Hydrate(p) and Hydrate(p+"/") expand identically.
func Hydrate(input any, opts ...Option) (*Result, error) {
	o := options{baseDir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	patterns, err := coercePatterns(input)
	if err != nil {
		return nil, err
	}

	excludes, err := compileExcludes(o.excludes)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, pattern := range patterns {
		effective := pattern
		if isBarePath(pattern) {
			effective = strings.TrimRight(pattern, "/") + "/**/*"
		}
		result.Patterns = append(result.Patterns, effective)

		resolved := filepath.ToSlash(resolve(o.baseDir, effective))
		matches, err := doublestar.FilepathGlob(resolved, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.NewInvalidArgumentError("pattern does not parse").
				WithField("patterns").
				WithValue(pattern).
				WithCause(err)
		}

		for _, match := range matches {
			if excluded(excludes, match) {
				continue
			}
			result.Files = append(result.Files, match)
		}
	}

	return result, nil
}

// coercePatterns normalizes the plugin-boundary input shapes into []string.
func coercePatterns(input any) ([]string, error) {
	switch v := input.(type) {
	case string:
		return []string{v}, nil
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil, errors.NewInvalidArgumentError("pattern list elements must be strings").
					WithField(fmt.Sprintf("patterns[%d]", i)).
					WithValue(elem)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.NewInvalidArgumentError("patterns must be a string or a list of strings").
			WithField("patterns").
			WithValue(input)
	}
}

// isBarePath reports whether p carries no glob wildcard syntax.
func isBarePath(p string) bool {
	return !strings.ContainsAny(p, "*?[{")
}

// resolve absolutizes a pattern against the base directory. Absolute
// patterns pass through untouched so metacharacters survive cleaning only
// where the caller wrote them.
func resolve(base, pattern string) string {
	if filepath.IsAbs(pattern) {
		return pattern
	}
	return filepath.Join(base, pattern)
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("exclude pattern does not parse").
				WithField("excludes").
				WithValue(pattern).
				WithCause(err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func excluded(excludes []glob.Glob, path string) bool {
	slashed := filepath.ToSlash(path)
	for _, g := range excludes {
		if g.Match(slashed) {
			return true
		}
	}
	return false
}
