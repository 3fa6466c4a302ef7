package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var copyCmd = &cobra.Command{
	Use:   "copy <src> <dest>",
	Short: "Copy a file or directory under the base directory",
	Long: `Copy a file or directory tree. Relative paths resolve against the
base directory; directories copy recursively.`,
	Args: cobra.ExactArgs(2),
	RunE: runCopy,
}

func init() {
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.service.Copy(args[0], args[1]); err != nil {
		return err
	}

	fmt.Printf("%s %s %s %s\n", successStyle.Render("copied"), args[0], mutedStyle.Render("to"), args[1])
	return nil
}
