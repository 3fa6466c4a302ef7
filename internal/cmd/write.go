package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <path>",
	Short: "Write data to a file under the base directory",
	Long: `Write data to a file, creating parent directories as needed. The
payload comes from --data or from standard input with --stdin, and is
decoded according to --encoding before writing.

Examples:
  packrat write notes/today.md --data 'groceries'
  cat report.pdf | base64 | packrat write report.pdf --stdin --encoding base64`,
	Args: cobra.ExactArgs(1),
	RunE: runWrite,
}

var (
	writeData     string
	writeStdin    bool
	writeEncoding string
)

func init() {
	writeCmd.Flags().StringVar(&writeData, "data", "", "data to write")
	writeCmd.Flags().BoolVar(&writeStdin, "stdin", false, "read the data from standard input")
	writeCmd.Flags().StringVar(&writeEncoding, "encoding", "", "payload encoding (default: configured encoding)")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	if writeStdin && cmd.Flags().Changed("data") {
		return fmt.Errorf("--data and --stdin are mutually exclusive")
	}

	data := writeData
	if writeStdin {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}
		data = string(raw)
	} else if !cmd.Flags().Changed("data") {
		return fmt.Errorf("no data provided: use --data or --stdin")
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.service.Write(data, args[0], writeEncoding); err != nil {
		return err
	}

	fmt.Printf("%s %s\n", successStyle.Render("wrote"), args[0])
	return nil
}
