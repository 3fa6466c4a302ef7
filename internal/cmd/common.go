package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/packrat/internal/pathutil"
)

var commonCmd = &cobra.Command{
	Use:   "common <path>...",
	Short: "Find the longest common directory of the given paths",
	Long: `Print the longest directory prefix shared by every path, with a
trailing separator. Prints nothing when the paths share no prefix.

Example:
  packrat common /a/b/c/x.js /a/b/d/y.js
  /a/b/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommon,
}

func init() {
	rootCmd.AddCommand(commonCmd)
}

func runCommon(cmd *cobra.Command, args []string) error {
	common := pathutil.CommonPath(args...)
	if common == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("no common path"))
		return nil
	}
	fmt.Println(common)
	return nil
}
