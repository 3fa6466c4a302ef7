// Package plugin exposes packrat's operations as named commands.
//
// A Plugin binds a files.Service and a settings instance to one handler per
// command topic. Hosts either call Dispatch directly or Attach the plugin to
// an event bus, where publishing a CommandEvent on a topic invokes its
// handler; results and failures come back as events on the same bus.
package plugin

import (
	"context"
	"slices"

	"github.com/spf13/cast"

	"github.com/Iron-Ham/packrat/internal/config"
	"github.com/Iron-Ham/packrat/internal/errors"
	"github.com/Iron-Ham/packrat/internal/event"
	"github.com/Iron-Ham/packrat/internal/files"
	"github.com/Iron-Ham/packrat/internal/hydrate"
	"github.com/Iron-Ham/packrat/internal/logging"
	"github.com/Iron-Ham/packrat/internal/pathutil"
	"github.com/Iron-Ham/packrat/internal/util"
)

// Command topics.
const (
	CmdFilesWrite      = "files.write"
	CmdFilesCopy       = "files.copy"
	CmdFilesReadLines  = "files.readlines"
	CmdFilesEmpty      = "files.empty"
	CmdArchiveBegin    = "archive.begin"
	CmdArchiveFinalize = "archive.finalize"
	CmdPathCommon      = "path.common"
	CmdGlobHydrate     = "glob.hydrate"
	CmdConfigApply     = "config.apply"
)

// Handler executes one command against its payload.
type Handler func(payload any) error

// Notifier receives informational messages meant for the host's own log or
// UI, such as lock rejections and no-op finalize notices.
type Notifier func(message string)

// Plugin is the command surface packrat presents to a host.
type Plugin struct {
	svc      *files.Service
	settings *config.Settings
	log      *logging.Logger
	notify   Notifier

	bus  *event.Bus
	subs []string
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(p *Plugin) { p.log = log }
}

// WithNotifier routes informational messages to fn.
func WithNotifier(fn Notifier) Option {
	return func(p *Plugin) { p.notify = fn }
}

// New binds svc and settings to a fresh command set. A nil settings starts
// from the defaults.
func New(svc *files.Service, settings *config.Settings, opts ...Option) *Plugin {
	p := &Plugin{
		svc:      svc,
		settings: settings,
		log:      logging.NopLogger(),
	}
	if p.settings == nil {
		p.settings = config.Default()
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Service returns the file service the commands operate on.
func (p *Plugin) Service() *files.Service {
	return p.svc
}

// Settings returns the live settings, including changes applied through the
// config.apply command.
func (p *Plugin) Settings() *config.Settings {
	return p.settings
}

// Commands returns the full command set keyed by topic.
func (p *Plugin) Commands() map[string]Handler {
	return map[string]Handler{
		CmdFilesWrite:      p.handleWrite,
		CmdFilesCopy:       p.handleCopy,
		CmdFilesReadLines:  p.handleReadLines,
		CmdFilesEmpty:      p.handleEmpty,
		CmdArchiveBegin:    p.handleArchiveBegin,
		CmdArchiveFinalize: p.handleArchiveFinalize,
		CmdPathCommon:      p.handleCommonPath,
		CmdGlobHydrate:     p.handleHydrate,
		CmdConfigApply:     p.handleConfigApply,
	}
}

// Dispatch runs the handler for topic synchronously and returns its error.
// Unknown topics are a usage error.
func (p *Plugin) Dispatch(topic string, payload any) error {
	handler, ok := p.Commands()[topic]
	if !ok {
		return errors.NewUsageError("unknown command").WithOp(topic)
	}
	return handler(payload)
}

// Attach subscribes one handler per command topic. Handler errors do not
// propagate to the publisher; they are logged and republished as
// CommandFailedEvents.
func (p *Plugin) Attach(bus *event.Bus) {
	p.bus = bus
	for topic, handler := range p.Commands() {
		id := bus.Subscribe(topic, func(e event.Event) {
			cmd, ok := e.(event.CommandEvent)
			if !ok {
				return
			}
			if err := handler(cmd.Payload); err != nil {
				p.fail(e.EventType(), err)
			}
		})
		p.subs = append(p.subs, id)
	}
}

// Detach removes the subscriptions added by Attach.
func (p *Plugin) Detach() {
	if p.bus == nil {
		return
	}
	for _, id := range p.subs {
		p.bus.Unsubscribe(id)
	}
	p.subs = nil
	p.bus = nil
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// handleWrite stores the "data" field under "path", decoded per "encoding"
// when present.
func (p *Plugin) handleWrite(payload any) error {
	fields, err := commandFields(payload)
	if err != nil {
		return err
	}
	return p.svc.Write(
		cast.ToString(fields["data"]),
		cast.ToString(fields["path"]),
		cast.ToString(fields["encoding"]),
	)
}

func (p *Plugin) handleCopy(payload any) error {
	fields, err := commandFields(payload)
	if err != nil {
		return err
	}
	return p.svc.Copy(cast.ToString(fields["src"]), cast.ToString(fields["dest"]))
}

func (p *Plugin) handleReadLines(payload any) error {
	fields, err := commandFields(payload)
	if err != nil {
		return err
	}
	path := cast.ToString(fields["path"])
	start := cast.ToInt(fields["start"])
	end := cast.ToInt(fields["end"])

	lines, err := p.svc.ReadLines(path, start, end)
	if err != nil {
		return err
	}
	p.publish(event.NewLinesReadEvent(path, start, end, lines))
	return nil
}

func (p *Plugin) handleEmpty(_ any) error {
	return p.svc.EmptyBaseDir()
}

// handleArchiveBegin opens a session named by the "name" field. An absent
// "fold" field means fold into the parent; hosts opt out with fold=false.
func (p *Plugin) handleArchiveBegin(payload any) error {
	fields, err := commandFields(payload)
	if err != nil {
		return err
	}
	fold := true
	if v, ok := fields["fold"]; ok {
		fold = cast.ToBool(v)
	}
	return p.svc.BeginArchive(cast.ToString(fields["name"]), fold)
}

// handleArchiveFinalize settles the innermost session. An empty stack is not
// an error, only a notice.
func (p *Plugin) handleArchiveFinalize(_ any) error {
	res, err := p.svc.FinalizeArchive(context.Background())
	if err != nil {
		return err
	}
	if !res.Finalized {
		p.notice("no archive session open; nothing to finalize")
	}
	return nil
}

func (p *Plugin) handleCommonPath(payload any) error {
	paths, err := stringList(payload)
	if err != nil {
		return err
	}
	p.publish(event.NewCommonPathEvent(paths, pathutil.CommonPath(paths...)))
	return nil
}

func (p *Plugin) handleHydrate(payload any) error {
	res, err := hydrate.Hydrate(payload,
		hydrate.WithBaseDir(p.svc.BaseDir()),
		hydrate.WithExcludes(p.settings.Excludes...),
	)
	if err != nil {
		return err
	}
	p.publish(event.NewHydratedEvent(res.Patterns, res.Files))
	return nil
}

// handleConfigApply merges a settings payload, pushes accepted changes into
// the service, and reports lock refusals as notices rather than errors.
func (p *Plugin) handleConfigApply(payload any) error {
	changed, rejected, err := p.settings.Apply(payload)
	if err != nil {
		return err
	}

	for _, field := range rejected {
		p.notice("base directory is locked; change to " + field + " rejected")
	}
	if slices.Contains(changed, "base_dir") {
		p.svc.SetBaseDir(p.settings.BaseDir)
	}
	if slices.Contains(changed, "compress_format") {
		if format, ferr := p.settings.Format(); ferr == nil {
			p.svc.SetFormat(format)
		}
	}
	if slices.Contains(changed, "encoding") {
		p.svc.SetDefaultEncoding(p.settings.Encoding)
	}

	p.publish(event.NewConfigAppliedEvent(changed, rejected))
	return nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// fail logs a handler failure and republishes it. Invalid payloads are echoed
// back inside the error, so the logged copy is capped; the event carries the
// full message.
func (p *Plugin) fail(topic string, err error) {
	p.log.Error("command failed", "command", topic, "error", util.TruncateString(err.Error(), 100))
	p.publish(event.NewCommandFailedEvent(topic, err.Error(), errors.IsUserFacing(err)))
}

// notice reports an informational message to the log and the host's
// notification sink.
func (p *Plugin) notice(message string) {
	p.log.Info(message)
	if p.notify != nil {
		p.notify(message)
	}
}

func (p *Plugin) publish(e event.Event) {
	if p.bus != nil {
		p.bus.Publish(e)
	}
}

// commandFields coerces a command payload into a field map.
func commandFields(payload any) (map[string]any, error) {
	fields, err := cast.ToStringMapE(payload)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("command payload must be an object").
			WithField("payload").
			WithValue(payload).
			WithCause(err)
	}
	return fields, nil
}

// stringList normalizes a payload that may be a single string or an array of
// strings.
func stringList(payload any) ([]string, error) {
	switch v := payload.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.NewInvalidArgumentError("list items must be strings").
					WithField("paths").
					WithValue(item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.NewInvalidArgumentError("payload must be a string or an array of strings").
			WithField("paths").
			WithValue(payload)
	}
}
