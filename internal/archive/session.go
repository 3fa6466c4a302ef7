package archive

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/mholt/archiver/v3"

	"github.com/Iron-Ham/packrat/internal/errors"
)

// -----------------------------------------------------------------------------
// Session State
// -----------------------------------------------------------------------------

// State describes where a session is in its lifecycle. Sessions move strictly
// forward: Open -> Closing -> Closed.
type State int

const (
	// StateOpen means the session accepts new entries.
	StateOpen State = iota

	// StateClosing means finalization has started: nested completions are
	// being drained and the compression stream is being flushed.
	StateClosing

	// StateClosed means the output handle has been released. Entry
	// operations against a closed session are usage errors.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Session
// -----------------------------------------------------------------------------

// Session is one open archive on the stack. It owns its compression writer
// and output file handle exclusively; both are released exactly once, during
// finalization.
//
// Sessions are created by [Stack.Begin] and settled by [Stack.Finalize].
// Entry operations go through the stack so that only the innermost session
// can be written to.
type Session struct {
	name       string // logical name including extension, e.g. "docs.tar.gz"
	outputPath string // where bytes are written: final path, or a temp path when folding
	format     Format
	writer     archiver.Writer
	out        *os.File
	fold       bool
	state      State
	entries    int

	// children holds completions for nested sessions that finalized with
	// foldIntoParent set. Each settles once the child's bytes are fully on
	// disk; the parent drains them in registration order before closing its
	// own stream.
	children []*pendingChild
}

// pendingChild ties a folded child's finished temp file to the parent that
// must absorb it. done is closed exactly once, after err is set.
type pendingChild struct {
	entryName string
	tempPath  string
	err       error
	done      chan struct{}
}

// Name returns the session's logical archive name, extension included.
func (sn *Session) Name() string { return sn.name }

// OutputPath returns the filesystem path the session writes to. For a nested
// session that folds into its parent this is a temporary path.
func (sn *Session) OutputPath() string { return sn.outputPath }

// State returns the session's lifecycle state.
func (sn *Session) State() State { return sn.state }

// Entries returns the number of entries written so far.
func (sn *Session) Entries() int { return sn.entries }

// Folds reports whether the session will be absorbed into its parent archive
// when finalized.
func (sn *Session) Folds() bool { return sn.fold }

// appendBytes writes an in-memory payload as a single archive entry.
func (sn *Session) appendBytes(data []byte, entryName string) error {
	f := archiver.File{
		FileInfo: archiver.FileInfo{
			FileInfo: memFileInfo{
				name:    path.Base(entryName),
				size:    int64(len(data)),
				modTime: time.Now(),
			},
			CustomName: entryName,
		},
		ReadCloser: io.NopCloser(bytes.NewReader(data)),
	}
	if err := sn.writer.Write(f); err != nil {
		return errors.NewArchiveError("failed to write entry", err).
			WithArchive(sn.name).
			WithEntry(entryName)
	}
	sn.entries++
	return nil
}

// appendFile streams a file on disk into the archive under entryName.
func (sn *Session) appendFile(srcPath, entryName string) error {
	info, err := os.Stat(srcPath)
	if err != nil {
		return errors.NewIOError("failed to stat source file", err).
			WithOp("stat").
			WithPath(srcPath)
	}

	fh, err := os.Open(srcPath)
	if err != nil {
		return errors.NewIOError("failed to open source file", err).
			WithOp("open").
			WithPath(srcPath)
	}
	defer fh.Close()

	f := archiver.File{
		FileInfo:   archiver.FileInfo{FileInfo: info, CustomName: entryName},
		ReadCloser: fh,
	}
	if err := sn.writer.Write(f); err != nil {
		return errors.NewArchiveError("failed to append entry", err).
			WithArchive(sn.name).
			WithEntry(entryName)
	}
	sn.entries++
	return nil
}

// appendTree walks a directory and archives every regular file under it,
// preserving the relative structure beneath entryName. Directory entries are
// recorded so empty directories survive the round trip.
func (sn *Session) appendTree(src, entryName string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.NewIOError("failed to walk source directory", walkErr).
				WithOp("walk").
				WithPath(p)
		}

		rel, err := filepath.Rel(src, p)
		if err != nil {
			return errors.NewIOError("failed to resolve relative path", err).
				WithOp("rel").
				WithPath(p)
		}
		entry := entryName
		if rel != "." {
			entry = path.Join(entryName, filepath.ToSlash(rel))
		}

		info, err := d.Info()
		if err != nil {
			return errors.NewIOError("failed to stat source entry", err).
				WithOp("stat").
				WithPath(p)
		}

		if d.IsDir() {
			f := archiver.File{
				FileInfo: archiver.FileInfo{FileInfo: info, CustomName: entry},
			}
			if err := sn.writer.Write(f); err != nil {
				return errors.NewArchiveError("failed to append directory entry", err).
					WithArchive(sn.name).
					WithEntry(entry)
			}
			sn.entries++
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		return sn.appendFile(p, entry)
	})
}

// close flushes the compression stream and releases the output handle, in
// that order. A compression flush failure still closes the file handle.
func (sn *Session) close() error {
	werr := sn.writer.Close()
	ferr := sn.out.Close()
	sn.state = StateClosed

	if werr != nil {
		return errors.NewArchiveError("failed to finalize compression stream", werr).
			WithArchive(sn.name).
			WithFormat(string(sn.format))
	}
	if ferr != nil {
		return errors.NewIOError("failed to close archive output", ferr).
			WithOp("close").
			WithPath(sn.outputPath)
	}
	return nil
}

// release closes the writer and handle without caring about flush errors.
// Used on failure paths where the archive is already known to be bad.
func (sn *Session) release() {
	if sn.writer != nil {
		_ = sn.writer.Close()
	}
	if sn.out != nil {
		_ = sn.out.Close()
	}
	sn.state = StateClosed
}

// -----------------------------------------------------------------------------
// In-Memory File Info
// -----------------------------------------------------------------------------

// memFileInfo backs archive entries that have no filesystem counterpart,
// such as payloads written directly from memory.
type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return 0o644 }
func (fi memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() any           { return nil }
