package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/packrat/internal/archive"
	"github.com/Iron-Ham/packrat/internal/hydrate"
	"github.com/Iron-Ham/packrat/internal/util"
)

var packCmd = &cobra.Command{
	Use:   "pack <name> <path|glob>...",
	Short: "Pack matching files into an archive",
	Long: `Pack the files matched by the given paths or glob patterns into a
single archive under the base directory.

Bare paths (no glob characters) match everything beneath them, so
"packrat pack site src" archives the whole src tree. Patterns use
doublestar syntax; configured excludes apply on top of any --exclude
flags.

Examples:
  # Archive the src tree as site.tar.gz
  packrat pack site src

  # Archive only the Go files, as a zip
  packrat pack sources 'src/**/*.go' --format zip

  # Pack everything except logs
  packrat pack all . --exclude '*.log'`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPack,
}

var (
	packFormat   string
	packExcludes []string
)

func init() {
	packCmd.Flags().StringVar(&packFormat, "format", "", "archive format: tar.gz or zip (default: configured compress_format)")
	packCmd.Flags().StringArrayVar(&packExcludes, "exclude", nil, "glob pattern to drop from the match set (repeatable)")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if packFormat != "" {
		format, err := archive.ParseFormat(packFormat)
		if err != nil {
			return err
		}
		rt.service.SetFormat(format)
	}

	name := args[0]
	excludes := append(append([]string(nil), rt.settings.Excludes...), packExcludes...)

	matched, err := hydrate.Hydrate(args[1:],
		hydrate.WithBaseDir(rt.service.BaseDir()),
		hydrate.WithExcludes(excludes...),
	)
	if err != nil {
		return err
	}
	if len(matched.Files) == 0 {
		return fmt.Errorf("no files matched %s", strings.Join(args[1:], " "))
	}

	if err := rt.service.BeginArchive(name, false); err != nil {
		return err
	}
	entries := make([]string, 0, len(matched.Files))
	for _, file := range matched.Files {
		entry := entryName(rt.service.BaseDir(), file)
		if err := rt.service.Copy(file, entry); err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	result, err := rt.service.FinalizeArchive(cmd.Context())
	if err != nil {
		return err
	}

	printArchiveResult(result)
	fmt.Println(mutedStyle.Render(util.TruncateANSI(strings.Join(entries, " "), 100)))
	return nil
}

// entryName maps an absolute matched path to its archive entry name,
// relative to base when the file lives under it.
func entryName(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func printArchiveResult(res archive.Result) {
	var size int64
	if info, err := os.Stat(res.Path); err == nil {
		size = info.Size()
	}
	fmt.Printf("%s %s (%d entries, %s)\n",
		successStyle.Render("packed"), res.Name, res.Entries, util.FormatSize(size))
	fmt.Println(mutedStyle.Render(res.Path))
}
