package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/packrat/internal/event"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Empty the base directory",
	Long: `Remove everything inside the base directory, leaving the directory
itself in place. The request is refused when the base directory contains
the current working directory.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	// The working-directory guard reports through the bus, not as an error.
	var outcome *event.DirectoryEmptiedEvent
	rt.bus.Subscribe("directory.emptied", func(e event.Event) {
		if emptied, ok := e.(event.DirectoryEmptiedEvent); ok {
			outcome = &emptied
		}
	})

	if err := rt.service.EmptyBaseDir(); err != nil {
		return err
	}

	switch {
	case outcome == nil:
		fmt.Println(mutedStyle.Render("nothing removed"))
	case outcome.Refused:
		fmt.Printf("%s %s contains the working directory; nothing removed\n",
			warnStyle.Render("refused:"), outcome.Path)
	default:
		fmt.Printf("%s %s (%d entries removed)\n",
			successStyle.Render("emptied"), outcome.Path, outcome.Removed)
	}
	return nil
}
