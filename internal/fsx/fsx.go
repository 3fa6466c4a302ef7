// Package fsx wraps an afero filesystem with the primitives the rest of the
// codebase needs: ensure-directory, overwrite-write, recursive copy,
// empty-directory, and whole-file line reads. Every failure surfaces as an
// IOError carrying the operation and path. Tests can run the same code
// against an in-memory filesystem.
package fsx

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/packrat/internal/errors"
)

// FS bundles the filesystem operations used across packrat.
type FS struct {
	fs afero.Fs
}

// New creates an FS over the given afero filesystem.
func New(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewOS creates an FS over the real operating-system filesystem.
func NewOS() *FS {
	return New(afero.NewOsFs())
}

// EnsureDir creates dir and any missing parents.
func (f *FS) EnsureDir(dir string) error {
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return errors.NewIOError("create directory", err).WithOp("mkdir").WithPath(dir)
	}
	return nil
}

// WriteFile writes data to path, creating parent directories as needed and
// overwriting any existing file.
func (f *FS) WriteFile(path string, data []byte) error {
	if err := f.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := afero.WriteFile(f.fs, path, data, 0o644); err != nil {
		return errors.NewIOError("write file", err).WithOp("write").WithPath(path)
	}
	return nil
}

// ReadFile reads the whole file at path.
func (f *FS) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, errors.NewIOError("read file", err).WithOp("read").WithPath(path)
	}
	return data, nil
}

// ReadFileLines reads the whole file at path and splits it on newlines.
// A file ending in a newline yields a final empty line, matching a plain
// split on "\n".
func (f *FS) ReadFileLines(path string) ([]string, error) {
	data, err := f.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}

// CopyFile copies a single regular file from src to dst, creating parent
// directories as needed and preserving the source's permission bits.
func (f *FS) CopyFile(src, dst string) error {
	info, err := f.fs.Stat(src)
	if err != nil {
		return errors.NewIOError("stat source", err).WithOp("copy").WithPath(src)
	}
	if info.IsDir() {
		return errors.NewIOError("source is a directory", errors.ErrNotAFile).WithOp("copy").WithPath(src)
	}

	in, err := f.fs.Open(src)
	if err != nil {
		return errors.NewIOError("open source", err).WithOp("copy").WithPath(src)
	}
	defer in.Close()

	if err := f.EnsureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	out, err := f.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.NewIOError("create destination", err).WithOp("copy").WithPath(dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.NewIOError("copy bytes", err).WithOp("copy").WithPath(dst)
	}
	if err := out.Close(); err != nil {
		return errors.NewIOError("close destination", err).WithOp("copy").WithPath(dst)
	}
	return nil
}

// CopyDir recursively copies the directory tree rooted at src into dst,
// preserving relative structure.
func (f *FS) CopyDir(src, dst string) error {
	info, err := f.fs.Stat(src)
	if err != nil {
		return errors.NewIOError("stat source", err).WithOp("copy").WithPath(src)
	}
	if !info.IsDir() {
		return f.CopyFile(src, dst)
	}

	return afero.Walk(f.fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.NewIOError("walk source", err).WithOp("copy").WithPath(path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.NewIOError("relativize path", err).WithOp("copy").WithPath(path)
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			if err := f.fs.MkdirAll(target, info.Mode().Perm()); err != nil {
				return errors.NewIOError("create directory", err).WithOp("copy").WithPath(target)
			}
			return nil
		}
		return f.CopyFile(path, target)
	})
}

// EmptyDir removes every entry inside dir, leaving dir itself in place.
// Returns the number of top-level entries removed.
func (f *FS) EmptyDir(dir string) (int, error) {
	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		return 0, errors.NewIOError("read directory", err).WithOp("empty").WithPath(dir)
	}

	removed := 0
	for _, entry := range entries {
		target := filepath.Join(dir, entry.Name())
		if err := f.fs.RemoveAll(target); err != nil {
			return removed, errors.NewIOError("remove entry", err).WithOp("empty").WithPath(target)
		}
		removed++
	}
	return removed, nil
}

// Exists reports whether path exists.
func (f *FS) Exists(path string) (bool, error) {
	ok, err := afero.Exists(f.fs, path)
	if err != nil {
		return false, errors.NewIOError("stat path", err).WithOp("stat").WithPath(path)
	}
	return ok, nil
}

// IsDir reports whether path exists and is a directory.
func (f *FS) IsDir(path string) (bool, error) {
	ok, err := afero.IsDir(f.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.NewIOError("stat path", err).WithOp("stat").WithPath(path)
	}
	return ok, nil
}
