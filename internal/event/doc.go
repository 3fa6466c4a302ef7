// Package event provides a pub-sub event bus for decoupled communication
// between packrat and its host.
//
// Packrat runs as a plugin inside a larger application. The host publishes
// command events onto the bus and packrat publishes results back, so neither
// side needs a direct reference to the other. The same bus carries watcher
// notifications and config change notices.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// The package defines several categories of events:
//
// File Events:
//   - [FileWrittenEvent]: Emitted when content is written to disk or an archive
//   - [FileCopiedEvent]: Emitted when a file or directory is copied
//   - [DirectoryEmptiedEvent]: Emitted after an empty-directory request
//   - [LinesReadEvent]: Emitted with the result of a read-lines command
//
// Archive Events:
//   - [ArchiveStartedEvent]: Emitted when an archive session opens
//   - [ArchiveFinalizedEvent]: Emitted when an archive session closes
//
// Path and Glob Events:
//   - [CommonPathEvent]: Emitted with the shared leading directory of a path set
//   - [HydratedEvent]: Emitted with the files matched by a set of glob patterns
//
// Watch Events:
//   - [FileChangedEvent]: Emitted when a watched file changes (debounced)
//
// Command and Config Events:
//   - [CommandEvent]: A request for a named command, published by the host
//   - [CommandFailedEvent]: Emitted when a bus-dispatched command fails
//   - [ConfigAppliedEvent]: Emitted after a settings payload is applied
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Multiple goroutines can publish
// and subscribe concurrently. Handlers are called synchronously and protected
// against panics - a panicking handler will not prevent other handlers from
// being called.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	// Subscribe to specific event types
//	bus.Subscribe("archive.finalized", func(e event.Event) {
//	    done := e.(event.ArchiveFinalizedEvent)
//	    log.Printf("Archive %s written to %s", done.Name, done.Path)
//	})
//
//	// Subscribe to all events (useful for logging)
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("Event: %s at %v", e.EventType(), e.Timestamp())
//	})
//
//	// Publish events
//	bus.Publish(event.NewFileWrittenEvent("notes/today.md", 280, "utf8", false))
//
//	// Unsubscribe when done
//	id := bus.Subscribe("file.changed", handler)
//	bus.Unsubscribe(id)
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - file.written, file.copied, file.changed
//   - directory.emptied, lines.read
//   - archive.started, archive.finalized
//   - path.computed, glob.hydrated
//   - command.failed
//   - config.applied
package event
