package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Iron-Ham/packrat/internal/errors"
	"github.com/Iron-Ham/packrat/internal/logging"
	"github.com/Iron-Ham/packrat/internal/pathutil"
)

// -----------------------------------------------------------------------------
// Stack
// -----------------------------------------------------------------------------

// Stack manages nested archive sessions in strict LIFO order. Begin pushes a
// new session, entry operations address the innermost session only, and
// Finalize pops and settles the innermost session.
//
// A session begun with foldIntoParent writes to a temporary file next to its
// final path; when it finalizes while an enclosing session remains, the temp
// file is handed to that parent as a pending completion and absorbed into the
// parent's archive during the parent's own finalization.
//
// A Stack is not safe for concurrent use. Callers drive it from a single
// goroutine, matching the one-command-at-a-time shape of the command surface.
type Stack struct {
	format   Format
	baseDir  string
	log      *logging.Logger
	sessions []*Session

	// tempSeq numbers fold temp files. It only ever increases for the
	// lifetime of the stack, so temp names never collide even after the
	// stack empties and refills.
	tempSeq int64
}

// Result reports the outcome of a Finalize call. Finalized is false when the
// stack was empty and there was nothing to do.
type Result struct {
	Name      string // logical archive name, extension included
	Path      string // where the bytes landed: final path, or temp path when folded
	Entries   int    // entries written to the archive
	Folded    bool   // true when the archive was handed to a parent session
	Finalized bool
}

// NewStack creates an empty session stack. Archive names resolve against
// baseDir unless absolute. A nil logger falls back to a no-op logger.
func NewStack(format Format, baseDir string, log *logging.Logger) *Stack {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Stack{
		format:  format,
		baseDir: baseDir,
		log:     log,
	}
}

// Depth returns the number of open sessions.
func (s *Stack) Depth() int {
	return len(s.sessions)
}

// Active returns the innermost session, or nil when the stack is empty.
func (s *Stack) Active() *Session {
	if len(s.sessions) == 0 {
		return nil
	}
	return s.sessions[len(s.sessions)-1]
}

// Format returns the container format sessions are begun with.
func (s *Stack) Format() Format {
	return s.format
}

// SetFormat changes the container format for sessions begun afterwards.
// Sessions already open keep the format they were begun with.
func (s *Stack) SetFormat(f Format) {
	s.format = f
}

// SetBaseDir changes the directory future archive names and copy sources
// resolve against. Sessions already open keep the output paths they resolved
// at Begin time.
func (s *Stack) SetBaseDir(dir string) {
	s.baseDir = dir
}

// Begin opens a new archive session and pushes it onto the stack. The
// logical archive name is name plus the format extension, resolved against
// the stack's base directory.
//
// When foldIntoParent is set and at least one session is already open, the
// new session writes to a temporary sibling of its final path; the temp file
// is absorbed into the enclosing archive when both sessions finalize. With an
// empty stack the flag has no effect and the session writes to its final
// path directly.
func (s *Stack) Begin(name string, foldIntoParent bool) error {
	if name == "" {
		return errors.NewInvalidArgumentError("archive name must not be empty").
			WithField("name")
	}

	logical := name + "." + s.format.Extension()
	finalPath := pathutil.Resolve(s.baseDir, logical)

	nested := len(s.sessions) > 0
	outputPath := finalPath
	if nested && foldIntoParent {
		s.tempSeq++
		outputPath = fmt.Sprintf("%s.temp-%d", finalPath, s.tempSeq)
	}

	writer, err := s.format.newWriter()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return errors.NewIOError("failed to create archive directory", err).
			WithOp("mkdir").
			WithPath(filepath.Dir(outputPath))
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.NewIOError("failed to create archive output", err).
			WithOp("create").
			WithPath(outputPath)
	}

	if err := writer.Create(out); err != nil {
		_ = out.Close()
		_ = os.Remove(outputPath)
		return errors.NewArchiveError("failed to open compression stream", err).
			WithArchive(logical).
			WithFormat(string(s.format))
	}

	s.sessions = append(s.sessions, &Session{
		name:       logical,
		outputPath: outputPath,
		format:     s.format,
		writer:     writer,
		out:        out,
		fold:       foldIntoParent,
		state:      StateOpen,
	})

	s.log.Info("archive session opened",
		"archive", logical,
		"format", string(s.format),
		"nested", nested,
		"fold", foldIntoParent)
	return nil
}

// Write adds an in-memory payload to the innermost session as a single
// entry. Entry names may contain "/" to place the payload in a subdirectory
// of the archive.
func (s *Stack) Write(data []byte, entryName string) error {
	top, err := s.active("write")
	if err != nil {
		return err
	}
	if entryName == "" {
		return errors.NewInvalidArgumentError("entry name must not be empty").
			WithField("entryName")
	}

	if err := top.appendBytes(data, entryName); err != nil {
		return err
	}

	s.log.Debug("entry written",
		"archive", top.name,
		"entry", entryName,
		"bytes", len(data))
	return nil
}

// Copy streams a file or directory from disk into the innermost session.
// Relative sources resolve against the stack's base directory. A directory
// source is archived recursively with its structure preserved under
// entryName.
func (s *Stack) Copy(srcPath, entryName string) error {
	top, err := s.active("copy")
	if err != nil {
		return err
	}
	if entryName == "" {
		return errors.NewInvalidArgumentError("entry name must not be empty").
			WithField("entryName")
	}

	src := pathutil.Resolve(s.baseDir, srcPath)
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewArchiveError("copy source does not exist", errors.ErrEntryMissing).
				WithArchive(top.name).
				WithEntry(entryName)
		}
		return errors.NewIOError("failed to stat copy source", err).
			WithOp("stat").
			WithPath(src)
	}

	if info.IsDir() {
		err = top.appendTree(src, entryName)
	} else {
		err = top.appendFile(src, entryName)
	}
	if err != nil {
		return err
	}

	s.log.Debug("source copied into archive",
		"archive", top.name,
		"source", src,
		"entry", entryName)
	return nil
}

// Finalize pops the innermost session and settles it: pending child
// completions are drained in order and their temp files absorbed, the
// compression stream is flushed, and the output handle is closed. The
// session's own completion, if it folds into a parent, is settled on every
// return path so an enclosing Finalize never waits forever.
//
// Finalizing an empty stack is not an error; it logs and returns a zero
// Result with Finalized unset.
//
// A child that failed rejects this finalization: the error surfaces here,
// wrapped with the child's logical name, and the popped session's archive is
// abandoned.
func (s *Stack) Finalize(ctx context.Context) (Result, error) {
	if len(s.sessions) == 0 {
		s.log.Info("no archive session to finalize")
		return Result{}, nil
	}

	top := s.sessions[len(s.sessions)-1]
	s.sessions = s.sessions[:len(s.sessions)-1]
	top.state = StateClosing

	var completion *pendingChild
	if top.fold && len(s.sessions) > 0 {
		completion = &pendingChild{
			entryName: top.name,
			tempPath:  top.outputPath,
			done:      make(chan struct{}),
		}
		parent := s.sessions[len(s.sessions)-1]
		parent.children = append(parent.children, completion)
	}

	var ferr error
	defer func() {
		if completion != nil {
			completion.err = ferr
			close(completion.done)
		}
	}()

	for _, child := range top.children {
		select {
		case <-child.done:
		case <-ctx.Done():
			top.release()
			ferr = errors.Wrap(ctx.Err(), "canceled while waiting for nested archives")
			return Result{}, ferr
		}

		if child.err != nil {
			top.release()
			ferr = errors.Wrapf(child.err, "nested archive %q failed", child.entryName)
			return Result{}, ferr
		}

		if err := top.appendFile(child.tempPath, child.entryName); err != nil {
			top.release()
			ferr = err
			return Result{}, ferr
		}
		if err := os.Remove(child.tempPath); err != nil {
			top.release()
			ferr = errors.NewIOError("failed to remove absorbed temp archive", err).
				WithOp("remove").
				WithPath(child.tempPath)
			return Result{}, ferr
		}
	}

	if err := top.close(); err != nil {
		ferr = err
		return Result{}, ferr
	}

	s.log.Info("archive session finalized",
		"archive", top.name,
		"path", top.outputPath,
		"entries", top.entries,
		"folded", completion != nil)

	return Result{
		Name:      top.name,
		Path:      top.outputPath,
		Entries:   top.entries,
		Folded:    completion != nil,
		Finalized: true,
	}, nil
}

// active returns the innermost session if it can accept entries, or a usage
// error naming the attempted operation.
func (s *Stack) active(op string) (*Session, error) {
	if len(s.sessions) == 0 {
		return nil, errors.NewUsageError("no archive session is open").
			WithOp(op)
	}
	top := s.sessions[len(s.sessions)-1]
	if top.state != StateOpen {
		return nil, errors.NewUsageError("archive session is not open for writing").
			WithOp(op).
			WithCause(errors.ErrSessionClosed)
	}
	return top, nil
}
