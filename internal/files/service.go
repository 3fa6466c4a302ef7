// Package files is the entry point for packrat's file operations. A Service
// routes writes and copies either to the plain filesystem or, when an archive
// session is open, into that session as entries. It also carries the
// line-numbered read and the guarded empty-directory operation, and publishes
// an event for every completed operation when a bus is attached.
package files

import (
	"context"
	"fmt"
	"os"

	"github.com/Iron-Ham/packrat/internal/archive"
	"github.com/Iron-Ham/packrat/internal/errors"
	"github.com/Iron-Ham/packrat/internal/event"
	"github.com/Iron-Ham/packrat/internal/fsx"
	"github.com/Iron-Ham/packrat/internal/logging"
	"github.com/Iron-Ham/packrat/internal/pathutil"
)

// Service bundles the file, read, and archive operations behind one surface.
// Relative paths resolve against the service's base directory.
//
// Like the archive stack it owns, a Service is driven from a single
// goroutine.
type Service struct {
	fs       *fsx.FS
	stack    *archive.Stack
	bus      *event.Bus
	log      *logging.Logger
	baseDir  string
	encoding string
}

// Option configures a Service.
type Option func(*Service)

// WithFS swaps the backing filesystem. Defaults to the operating-system
// filesystem; tests pass an in-memory one.
func WithFS(fs *fsx.FS) Option {
	return func(s *Service) { s.fs = fs }
}

// WithBus attaches an event bus. Every completed operation publishes a
// result event on it. Without a bus no events are published.
func WithBus(bus *event.Bus) Option {
	return func(s *Service) { s.bus = bus }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithDefaultEncoding sets the encoding assumed when a caller passes none.
// Defaults to utf8.
func WithDefaultEncoding(name string) Option {
	return func(s *Service) { s.encoding = name }
}

// NewService creates a Service whose relative paths resolve against baseDir
// and whose archive sessions use the given container format.
func NewService(baseDir string, format archive.Format, opts ...Option) *Service {
	s := &Service{
		baseDir:  baseDir,
		encoding: fsx.DefaultEncoding,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = fsx.NewOS()
	}
	if s.log == nil {
		s.log = logging.NopLogger()
	}
	s.stack = archive.NewStack(format, baseDir, s.log)
	return s
}

// BaseDir returns the directory relative paths resolve against.
func (s *Service) BaseDir() string {
	return s.baseDir
}

// SetBaseDir changes the resolution directory for future operations,
// including archive sessions begun after the call.
func (s *Service) SetBaseDir(dir string) {
	s.baseDir = dir
	s.stack.SetBaseDir(dir)
}

// ArchiveDepth returns the number of open archive sessions.
func (s *Service) ArchiveDepth() int {
	return s.stack.Depth()
}

// Format returns the container format archive sessions use.
func (s *Service) Format() archive.Format {
	return s.stack.Format()
}

// SetFormat changes the container format for archive sessions begun
// afterwards. Sessions already open keep their format.
func (s *Service) SetFormat(f archive.Format) {
	s.stack.SetFormat(f)
}

// DefaultEncoding returns the encoding assumed when a caller passes none.
func (s *Service) DefaultEncoding() string {
	return s.encoding
}

// SetDefaultEncoding changes the encoding assumed when a caller passes none.
func (s *Service) SetDefaultEncoding(name string) {
	s.encoding = name
}

// BeginArchive opens a new archive session named name plus the format
// extension. While any session is open, Write and Copy feed it instead of the
// filesystem. See [archive.Stack.Begin] for the foldIntoParent behavior.
func (s *Service) BeginArchive(name string, foldIntoParent bool) error {
	nested := s.stack.Depth() > 0
	if err := s.stack.Begin(name, foldIntoParent); err != nil {
		return err
	}

	logical := name + "." + s.stack.Format().Extension()
	s.publish(event.NewArchiveStartedEvent(logical, string(s.stack.Format()), nested))
	return nil
}

// FinalizeArchive settles the innermost archive session. With no session open
// it logs and succeeds without doing anything; see [archive.Stack.Finalize].
func (s *Service) FinalizeArchive(ctx context.Context) (archive.Result, error) {
	res, err := s.stack.Finalize(ctx)
	if err != nil {
		return res, err
	}
	if res.Finalized {
		s.publish(event.NewArchiveFinalizedEvent(res.Name, res.Path, res.Entries, res.Folded))
	}
	return res, nil
}

// Write stores the payload text, decoded per the declared encoding, under
// path. With an archive session open the bytes become an entry named path in
// that session; otherwise they are written to the resolved filesystem path,
// overwriting and creating parent directories as needed. An empty encoding
// means the service default.
func (s *Service) Write(data, path, encoding string) error {
	if path == "" {
		return errors.NewInvalidArgumentError("destination path must not be empty").
			WithField("path")
	}
	if encoding == "" {
		encoding = s.encoding
	}

	payload, err := fsx.Decode(data, encoding)
	if err != nil {
		return err
	}

	if s.stack.Depth() > 0 {
		if err := s.stack.Write(payload, path); err != nil {
			return err
		}
		s.publish(event.NewFileWrittenEvent(path, len(payload), encoding, true))
		return nil
	}

	dest := pathutil.Resolve(s.baseDir, path)
	if err := s.fs.WriteFile(dest, payload); err != nil {
		return err
	}

	s.log.Debug("file written",
		"path", dest,
		"bytes", len(payload),
		"encoding", encoding)
	s.publish(event.NewFileWrittenEvent(dest, len(payload), encoding, false))
	return nil
}

// Copy duplicates src under dest. With an archive session open the source is
// read from disk and appended to the session under dest as the entry name,
// directories recursively. Otherwise both paths resolve against the base
// directory and the copy happens on the filesystem.
func (s *Service) Copy(src, dest string) error {
	if src == "" {
		return errors.NewInvalidArgumentError("source path must not be empty").
			WithField("src")
	}
	if dest == "" {
		return errors.NewInvalidArgumentError("destination path must not be empty").
			WithField("dest")
	}

	if s.stack.Depth() > 0 {
		if err := s.stack.Copy(src, dest); err != nil {
			return err
		}
		s.publish(event.NewFileCopiedEvent(src, dest, true))
		return nil
	}

	from := pathutil.Resolve(s.baseDir, src)
	to := pathutil.Resolve(s.baseDir, dest)

	isDir, err := s.fs.IsDir(from)
	if err != nil {
		return err
	}
	if isDir {
		err = s.fs.CopyDir(from, to)
	} else {
		err = s.fs.CopyFile(from, to)
	}
	if err != nil {
		return err
	}

	s.log.Debug("file copied", "source", from, "dest", to)
	s.publish(event.NewFileCopiedEvent(from, to, false))
	return nil
}

// Read returns the file's bytes re-encoded as text in the named encoding,
// the inverse of Write's decode step. An empty encoding means the service
// default.
func (s *Service) Read(path, encoding string) (string, error) {
	if encoding == "" {
		encoding = s.encoding
	}
	data, err := s.fs.ReadFile(pathutil.Resolve(s.baseDir, path))
	if err != nil {
		return "", err
	}
	return fsx.Encode(data, encoding)
}

// ReadLines reads the whole file at path and returns the lines in [start,
// end) formatted as "<line number>| <text>" with 1-based numbers. start
// clamps to 0 and end to the line count, so out-of-range requests shrink
// rather than fail. Lines come from a plain split on "\n", so a file ending
// in a newline reports a final empty line.
func (s *Service) ReadLines(path string, start, end int) ([]string, error) {
	lines, err := s.fs.ReadFileLines(pathutil.Resolve(s.baseDir, path))
	if err != nil {
		return nil, err
	}

	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}

	var out []string
	for i := start; i < end; i++ {
		out = append(out, fmt.Sprintf("%d| %s", i+1, lines[i]))
	}
	return out, nil
}

// EmptyBaseDir removes everything inside the base directory, leaving the
// directory itself in place. When the base directory is the process working
// directory or one of its ancestors the request is refused and logged;
// the refusal is reported through the bus, not as an error.
func (s *Service) EmptyBaseDir() error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.NewIOError("failed to determine working directory", err).
			WithOp("empty")
	}

	base := pathutil.Resolve(cwd, s.baseDir)
	if pathutil.Contains(base, cwd) {
		s.log.Warn("refusing to empty a directory containing the working directory",
			"dir", base,
			"cwd", cwd)
		s.publish(event.NewDirectoryEmptiedEvent(base, 0, true))
		return nil
	}

	removed, err := s.fs.EmptyDir(base)
	if err != nil {
		return err
	}

	s.log.Info("directory emptied", "dir", base, "removed", removed)
	s.publish(event.NewDirectoryEmptiedEvent(base, removed, false))
	return nil
}

func (s *Service) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
