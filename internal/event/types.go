// Package event defines event types for decoupling packrat from its host.
// These events carry file and archive lifecycle notifications between the
// plugin surface, the watcher, and whatever the host wires up, without
// requiring direct dependencies.
package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "file.written", "archive.finalized")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// File Events
// -----------------------------------------------------------------------------

// FileWrittenEvent is emitted when content has been written, either to the
// filesystem or into the currently open archive session.
type FileWrittenEvent struct {
	baseEvent
	Path     string // Destination path or archive entry name
	Bytes    int    // Number of bytes written after decoding
	Encoding string // Encoding the payload was declared in
	Archived bool   // True if the write went into an archive session
}

// NewFileWrittenEvent creates a FileWrittenEvent.
func NewFileWrittenEvent(path string, bytes int, encoding string, archived bool) FileWrittenEvent {
	return FileWrittenEvent{
		baseEvent: newBaseEvent("file.written"),
		Path:      path,
		Bytes:     bytes,
		Encoding:  encoding,
		Archived:  archived,
	}
}

// FileCopiedEvent is emitted when a file or directory has been copied, either
// on the filesystem or into the currently open archive session.
type FileCopiedEvent struct {
	baseEvent
	Source   string // Source path
	Dest     string // Destination path or archive entry name
	Archived bool   // True if the copy went into an archive session
}

// NewFileCopiedEvent creates a FileCopiedEvent.
func NewFileCopiedEvent(source, dest string, archived bool) FileCopiedEvent {
	return FileCopiedEvent{
		baseEvent: newBaseEvent("file.copied"),
		Source:    source,
		Dest:      dest,
		Archived:  archived,
	}
}

// DirectoryEmptiedEvent is emitted after an empty-directory request, whether
// or not anything was removed.
type DirectoryEmptiedEvent struct {
	baseEvent
	Path    string // Directory that was emptied
	Removed int    // Number of top-level entries removed
	Refused bool   // True if the request was refused by the working-directory guard
}

// NewDirectoryEmptiedEvent creates a DirectoryEmptiedEvent.
func NewDirectoryEmptiedEvent(path string, removed int, refused bool) DirectoryEmptiedEvent {
	return DirectoryEmptiedEvent{
		baseEvent: newBaseEvent("directory.emptied"),
		Path:      path,
		Removed:   removed,
		Refused:   refused,
	}
}

// LinesReadEvent carries the numbered lines produced by a read-lines command.
type LinesReadEvent struct {
	baseEvent
	Path  string   // File the lines came from
	Start int      // Requested range start (0-based, inclusive)
	End   int      // Requested range end (exclusive)
	Lines []string // Lines formatted as "<number>| <text>"
}

// NewLinesReadEvent creates a LinesReadEvent.
func NewLinesReadEvent(path string, start, end int, lines []string) LinesReadEvent {
	return LinesReadEvent{
		baseEvent: newBaseEvent("lines.read"),
		Path:      path,
		Start:     start,
		End:       end,
		Lines:     lines,
	}
}

// -----------------------------------------------------------------------------
// Path and Glob Events
// -----------------------------------------------------------------------------

// CommonPathEvent carries the shared leading directory computed for a set of
// paths. Common is empty when the paths share nothing.
type CommonPathEvent struct {
	baseEvent
	Paths  []string // Input paths
	Common string   // Shared leading segments, trailing separator included
}

// NewCommonPathEvent creates a CommonPathEvent.
func NewCommonPathEvent(paths []string, common string) CommonPathEvent {
	return CommonPathEvent{
		baseEvent: newBaseEvent("path.computed"),
		Paths:     paths,
		Common:    common,
	}
}

// HydratedEvent carries the outcome of expanding glob patterns into a file
// list.
type HydratedEvent struct {
	baseEvent
	Patterns []string // Effective patterns after bare-path rewriting
	Files    []string // Matched files, directories excluded
}

// NewHydratedEvent creates a HydratedEvent.
func NewHydratedEvent(patterns, files []string) HydratedEvent {
	return HydratedEvent{
		baseEvent: newBaseEvent("glob.hydrated"),
		Patterns:  patterns,
		Files:     files,
	}
}

// -----------------------------------------------------------------------------
// Archive Events
// -----------------------------------------------------------------------------

// ArchiveStartedEvent is emitted when a new archive session is opened.
type ArchiveStartedEvent struct {
	baseEvent
	Name   string // Logical archive name including extension
	Format string // Archive format ("tar.gz" or "zip")
	Nested bool   // True if the session opened on top of another session
}

// NewArchiveStartedEvent creates an ArchiveStartedEvent.
func NewArchiveStartedEvent(name, format string, nested bool) ArchiveStartedEvent {
	return ArchiveStartedEvent{
		baseEvent: newBaseEvent("archive.started"),
		Name:      name,
		Format:    format,
		Nested:    nested,
	}
}

// ArchiveFinalizedEvent is emitted when an archive session has been closed
// and its bytes are fully flushed.
type ArchiveFinalizedEvent struct {
	baseEvent
	Name    string // Logical archive name including extension
	Path    string // Final filesystem path, or the temp path when folded
	Entries int    // Number of entries written to the archive
	Folded  bool   // True if the archive was merged into its parent
}

// NewArchiveFinalizedEvent creates an ArchiveFinalizedEvent.
func NewArchiveFinalizedEvent(name, path string, entries int, folded bool) ArchiveFinalizedEvent {
	return ArchiveFinalizedEvent{
		baseEvent: newBaseEvent("archive.finalized"),
		Name:      name,
		Path:      path,
		Entries:   entries,
		Folded:    folded,
	}
}

// -----------------------------------------------------------------------------
// Watch Events
// -----------------------------------------------------------------------------

// ChangeType represents the kind of filesystem change the watcher observed.
type ChangeType int

const (
	ChangeCreate ChangeType = iota // A new file or directory appeared
	ChangeWrite                    // An existing file was modified
	ChangeRemove                   // A file or directory was removed
	ChangeRename                   // A file or directory was renamed
)

// String returns a human-readable name for a change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreate:
		return "create"
	case ChangeWrite:
		return "write"
	case ChangeRemove:
		return "remove"
	case ChangeRename:
		return "rename"
	default:
		return "unknown"
	}
}

// FileChangedEvent is emitted by the watcher when a file under the base
// directory changes. Changes are debounced, so one event may stand for a
// burst of writes.
type FileChangedEvent struct {
	baseEvent
	Path   string     // Absolute path of the changed file
	Change ChangeType // Kind of change observed
}

// NewFileChangedEvent creates a FileChangedEvent.
func NewFileChangedEvent(path string, change ChangeType) FileChangedEvent {
	return FileChangedEvent{
		baseEvent: newBaseEvent("file.changed"),
		Path:      path,
		Change:    change,
	}
}

// -----------------------------------------------------------------------------
// Command Events
// -----------------------------------------------------------------------------

// CommandEvent carries a request for a named command. Its event type is the
// command topic itself, so a subscription on a topic receives its requests.
type CommandEvent struct {
	baseEvent
	Payload any // Command arguments; shape depends on the topic
}

// NewCommand creates a CommandEvent for the given topic.
func NewCommand(topic string, payload any) CommandEvent {
	return CommandEvent{
		baseEvent: newBaseEvent(topic),
		Payload:   payload,
	}
}

// CommandFailedEvent is emitted when a bus-dispatched command fails.
// The Error string is safe to show users when UserFacing is true.
type CommandFailedEvent struct {
	baseEvent
	Command    string // Command topic that failed (e.g., "files.write")
	Error      string // Error message
	UserFacing bool   // True if the message is safe to display
}

// NewCommandFailedEvent creates a CommandFailedEvent.
func NewCommandFailedEvent(command, errMsg string, userFacing bool) CommandFailedEvent {
	return CommandFailedEvent{
		baseEvent:  newBaseEvent("command.failed"),
		Command:    command,
		Error:      errMsg,
		UserFacing: userFacing,
	}
}

// -----------------------------------------------------------------------------
// Config Events
// -----------------------------------------------------------------------------

// ConfigAppliedEvent is emitted after a settings payload has been applied.
// Rejected lists the fields that were refused, currently only base-directory
// changes attempted while the base directory is locked.
type ConfigAppliedEvent struct {
	baseEvent
	Changed  []string // Fields whose values changed
	Rejected []string // Fields refused by the lock
}

// NewConfigAppliedEvent creates a ConfigAppliedEvent.
func NewConfigAppliedEvent(changed, rejected []string) ConfigAppliedEvent {
	return ConfigAppliedEvent{
		baseEvent: newBaseEvent("config.applied"),
		Changed:   changed,
		Rejected:  rejected,
	}
}
