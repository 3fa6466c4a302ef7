package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/packrat/internal/errors"
	"github.com/Iron-Ham/packrat/internal/hydrate"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle <name> <child=path|glob>...",
	Short: "Build an archive of archives",
	Long: `Build a parent archive containing one nested child archive per
argument. Each argument names a child and the path or glob it packs,
separated by "=". Every child is finalized into the parent as a single
compressed entry.

Example:
  # release.tar.gz containing docs.tar.gz and src.tar.gz
  packrat bundle release docs=docs src='src/**/*.go'`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBundle,
}

func init() {
	rootCmd.AddCommand(bundleCmd)
}

func runBundle(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	type child struct {
		name    string
		pattern string
	}
	children := make([]child, 0, len(args)-1)
	for _, arg := range args[1:] {
		name, pattern, ok := strings.Cut(arg, "=")
		if !ok || name == "" || pattern == "" {
			return fmt.Errorf("invalid child %q: want <child>=<path|glob>", arg)
		}
		children = append(children, child{name: name, pattern: pattern})
	}

	if err := rt.service.BeginArchive(args[0], false); err != nil {
		return err
	}

	for _, c := range children {
		matched, err := hydrate.Hydrate(c.pattern,
			hydrate.WithBaseDir(rt.service.BaseDir()),
			hydrate.WithExcludes(rt.settings.Excludes...),
		)
		if err != nil {
			return err
		}
		if len(matched.Files) == 0 {
			return fmt.Errorf("no files matched %q for child %s", c.pattern, c.name)
		}

		if err := rt.service.BeginArchive(c.name, true); err != nil {
			return err
		}
		for _, file := range matched.Files {
			if err := rt.service.Copy(file, entryName(rt.service.BaseDir(), file)); err != nil {
				return err
			}
		}
		folded, err := rt.service.FinalizeArchive(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("  %s %s (%d entries)\n", mutedStyle.Render("folded"), folded.Name, folded.Entries)
	}

	result, err := rt.service.FinalizeArchive(cmd.Context())
	if err != nil {
		return err
	}
	if depth := rt.service.ArchiveDepth(); depth != 0 {
		return errors.Wrapf(errors.ErrStackNotEmpty, "%d sessions left open", depth)
	}

	printArchiveResult(result)
	return nil
}
