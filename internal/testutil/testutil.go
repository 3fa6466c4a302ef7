// Package testutil provides testing utilities for packrat tests.
package testutil

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// SetupTestTree creates a temporary directory populated with the given
// files. The files map contains relative paths to file contents. The
// directory is automatically cleaned up when the test completes.
func SetupTestTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		WriteFile(t, dir, path, content)
	}
	return dir
}

// WriteFile creates or overwrites a file under root, creating parent
// directories as needed. Returns the absolute path of the file.
func WriteFile(t *testing.T, root, path, content string) string {
	t.Helper()

	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return fullPath
}

// ReadFile returns the contents of the file at path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}

// ListTree returns the relative slash-separated paths of all regular
// files under root, sorted lexically.
func ListTree(t *testing.T, root string) []string {
	t.Helper()

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk %s: %v", root, err)
	}
	sort.Strings(paths)
	return paths
}

// ReadTarGz decodes a gzipped tarball into a map of entry name to
// contents. Directory entries appear with a trailing slash and empty
// contents. Archives are read back with the standard library so the
// round trip is checked by code independent of the packer.
func ReadTarGz(t *testing.T, r io.Reader) map[string][]byte {
	t.Helper()

	gz, err := gzip.NewReader(r)
	if err != nil {
		t.Fatalf("failed to open gzip stream: %v", err)
	}
	defer gz.Close()

	entries := make(map[string][]byte)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read tar entry: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("failed to read tar entry %s: %v", hdr.Name, err)
		}
		entries[hdr.Name] = data
	}
	return entries
}

// ReadTarGzFile reads the gzipped tarball at path.
func ReadTarGzFile(t *testing.T, path string) map[string][]byte {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open archive %s: %v", path, err)
	}
	defer f.Close()
	return ReadTarGz(t, f)
}

// ReadZipFile reads the zip archive at path into a map of entry name to
// contents.
func ReadZipFile(t *testing.T, path string) map[string][]byte {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open zip archive %s: %v", path, err)
	}
	defer zr.Close()

	entries := make(map[string][]byte)
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			t.Fatalf("failed to open zip entry %s: %v", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read zip entry %s: %v", zf.Name, err)
		}
		entries[zf.Name] = data
	}
	return entries
}

// EntryNames returns the sorted entry names of an archive listing.
func EntryNames(entries map[string][]byte) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
