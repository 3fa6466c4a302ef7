package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var linesCmd = &cobra.Command{
	Use:   "lines <path> <start> <end>",
	Short: "Read a numbered range of lines from a file",
	Long: `Read the half-open line range [start, end) from a file and print each
line prefixed with its one-based number. Bounds clamp to the file, so
an oversized end stops at the last line.

Example:
  packrat lines src/main.go 10 20`,
	Args: cobra.ExactArgs(3),
	RunE: runLines,
}

func init() {
	rootCmd.AddCommand(linesCmd)
}

func runLines(cmd *cobra.Command, args []string) error {
	start, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid start %q: expected integer", args[1])
	}
	end, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid end %q: expected integer", args[2])
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	lines, err := rt.service.ReadLines(args[0], start, end)
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
