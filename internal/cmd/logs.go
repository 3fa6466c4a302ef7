package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/packrat/internal/config"
	"github.com/Iron-Ham/packrat/internal/errors"
	"github.com/Iron-Ham/packrat/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View packrat logs",
	Long: `View, filter, and export packrat's structured logs.

By default, shows the last 50 entries. Use flags to filter and format
the output.

Examples:
  # Show the last 50 entries
  packrat logs

  # Show everything at warn or above
  packrat logs --level warn -n 0

  # Show entries from the last hour about one archive
  packrat logs --since 1h --archive release.tar.gz

  # Export matching entries as CSV
  packrat logs --contains "failed" --export failures.csv --format csv`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsLevel     string
	logsSince     string
	logsCommand   string
	logsArchive   string
	logsComponent string
	logsContains  string
	logsTail      int
	logsExport    string
	logsFormat    string
)

func init() {
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "filter by minimum level (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "show entries since duration ago (e.g., 1h, 30m)")
	logsCmd.Flags().StringVar(&logsCommand, "command", "", "filter by command")
	logsCmd.Flags().StringVar(&logsArchive, "archive", "", "filter by archive name")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "filter by component")
	logsCmd.Flags().StringVar(&logsContains, "contains", "", "filter to messages containing a substring")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "number of entries to show (0 for all)")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "write matching entries to a file instead of printing")
	logsCmd.Flags().StringVar(&logsFormat, "format", "json", "export format: json, text, or csv")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	logDir := config.LogDir()

	entries, err := logging.AggregateLogs(logDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No logs found.")
			fmt.Println("Logs are stored at:", filepath.Join(logDir, logging.LogFileName))
			return nil
		}
		return err
	}

	filter := logging.LogFilter{
		Command:         logsCommand,
		Archive:         logsArchive,
		Component:       logsComponent,
		MessageContains: logsContains,
	}
	if logsLevel != "" {
		filter.Level = logging.ParseLevel(logsLevel)
	}
	if logsSince != "" {
		duration, err := time.ParseDuration(logsSince)
		if err != nil {
			return fmt.Errorf("invalid duration format: %w", err)
		}
		filter.StartTime = time.Now().Add(-duration)
	}

	entries = logging.FilterLogs(entries, filter)

	if logsExport != "" {
		if err := logging.ExportLogEntries(entries, logsExport, logsFormat); err != nil {
			return err
		}
		fmt.Printf("Exported %d entries to %s\n", len(entries), logsExport)
		return nil
	}

	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}

	for _, entry := range entries {
		fmt.Println(formatLogEntry(entry))
	}
	if len(entries) == 0 {
		fmt.Println("No matching log entries found.")
	}
	return nil
}

// formatLogEntry formats a log entry for terminal output
func formatLogEntry(entry logging.LogEntry) string {
	var sb strings.Builder

	sb.WriteString(mutedStyle.Render("[" + entry.Timestamp.Format("15:04:05.000") + "]"))
	sb.WriteString(" ")
	sb.WriteString(levelStyle(entry.Level).Render("[" + strings.ToUpper(entry.Level) + "]"))
	sb.WriteString(" ")
	sb.WriteString(entry.Message)

	if entry.Command != "" {
		sb.WriteString(" ")
		sb.WriteString(accentStyle.Render("command=" + entry.Command))
	}
	if entry.Archive != "" {
		sb.WriteString(" ")
		sb.WriteString(accentStyle.Render("archive=" + entry.Archive))
	}
	if entry.Component != "" {
		sb.WriteString(" ")
		sb.WriteString(accentStyle.Render("component=" + entry.Component))
	}
	for key, value := range entry.Attrs {
		sb.WriteString(" ")
		sb.WriteString(accentStyle.Render(key + "="))
		sb.WriteString(fmt.Sprintf("%v", value))
	}

	return sb.String()
}

// levelStyle returns the style for a log level
func levelStyle(level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case logging.LevelDebug:
		return mutedStyle
	case logging.LevelInfo:
		return accentStyle
	case logging.LevelWarn:
		return warnStyle
	case logging.LevelError:
		return errorStyle
	default:
		return mutedStyle
	}
}
