package cmd

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/packrat/internal/event"
	"github.com/Iron-Ham/packrat/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the base directory and report file changes",
	Long: `Watch the base directory tree and print one line per change. Changes
are debounced, so a burst of writes to the same file reports once.
Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchDebounce time.Duration
	watchIgnore   []string
)

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet window before a change is reported (default: configured watch.debounce_ms)")
	watchCmd.Flags().StringArrayVar(&watchIgnore, "ignore", nil, "base-name glob to ignore (default: configured watch.ignore)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	debounce := rt.settings.Watch.Debounce()
	if cmd.Flags().Changed("debounce") {
		debounce = watchDebounce
	}
	ignore := rt.settings.Watch.Ignore
	if cmd.Flags().Changed("ignore") {
		ignore = watchIgnore
	}

	base := rt.service.BaseDir()
	watcher, err := watch.New(base,
		watch.WithBus(rt.bus),
		watch.WithLogger(rt.log),
		watch.WithDebounce(debounce),
		watch.WithIgnore(ignore...),
	)
	if err != nil {
		return err
	}

	rt.bus.Subscribe("file.changed", func(e event.Event) {
		changed, ok := e.(event.FileChangedEvent)
		if !ok {
			return
		}
		path := changed.Path
		if rel, err := filepath.Rel(base, path); err == nil {
			path = rel
		}
		fmt.Printf("%s %s %s\n",
			mutedStyle.Render(changed.Timestamp().Format("15:04:05")),
			changeStyle(changed.Change).Render(fmt.Sprintf("%-6s", changed.Change)),
			path)
	})

	fmt.Printf("watching %s %s\n", base, mutedStyle.Render("(Ctrl+C to stop)"))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watcher.Run(ctx)
}

func changeStyle(change event.ChangeType) lipgloss.Style {
	switch change {
	case event.ChangeCreate:
		return successStyle
	case event.ChangeWrite:
		return accentStyle
	case event.ChangeRemove, event.ChangeRename:
		return warnStyle
	default:
		return mutedStyle
	}
}
