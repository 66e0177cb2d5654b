package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/query"
	"github.com/tman-org/tman/internal/registry"
	"github.com/tman-org/tman/internal/tool"
)

// ErrDeleteTarget is returned when delete is invoked without exactly one
// selection flag.
var ErrDeleteTarget = errors.New("provide exactly one of --name, --input-file or --all")

// CmdDelete creates the command that unregisters tools.
func CmdDelete() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "delete [flags]",
			Short: "Delete tools",
			Long: `Remove tools from the registry, optionally deleting them from the
file system too. With --all, tools left on disk can be picked for
removal by index afterwards.
`,
			Args: cobra.NoArgs,
		}, deleteFlags, runDelete,
	)
}

var deleteFlags = []commandLineFlag{
	nameFlag,
	{name: "input-file", shorthand: "i", usage: "read tool names from a file, one per line"},
	allFlag,
	logFlag,
	assumeYesFlag,
}

func runDelete(ctx *Context, _ []string) error {
	flags := ctx.Command.Flags()
	name, _ := flags.GetString("name")
	inputFile, _ := flags.GetString("input-file")
	all, _ := flags.GetBool("all")

	selected := 0
	for _, set := range []bool{name != "", inputFile != "", all} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return ErrDeleteTarget
	}

	store, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}

	if all {
		if len(reg.Tools) == 0 {
			return errors.New("no tool to delete")
		}
		return deleteAll(ctx, store, reg)
	}

	var doomed []*tool.Tool
	if name != "" {
		doomed = query.Find(reg.Tools, query.Criteria{Names: []string{name}})
	} else {
		doomed, err = toolsFromNameFile(reg, inputFile)
		if err != nil {
			return err
		}
	}
	if len(doomed) == 0 {
		return errors.New("no tool to delete")
	}

	for _, t := range doomed {
		reg.Remove(t)
		logger.Infof(ctx, "%s has been removed", t.Name)

		if t.IsInstalled() &&
			ctx.Prompter.Confirm(fmt.Sprintf("Delete %s from file system too?", t.Name), false) {
			if err := fileutil.Delete(t.Directory); err != nil {
				return fmt.Errorf("failed to delete %s: %w", t.Directory, err)
			}
			logger.Infof(ctx, "%s successfully deleted from file system", t.Name)
		}
	}
	return store.Save(reg)
}

// deleteAll clears the registry and lets the user pick, by index, which of
// the removed tools should also be erased from disk.
func deleteAll(ctx *Context, store *registry.Store, reg *registry.Registry) error {
	if !ctx.Prompter.Confirm("Remove every tool from the registry?", true) {
		return errors.New("aborted")
	}

	removed := reg.Tools
	logger.Infof(ctx, "%d tools removed", reg.RemoveAll())
	if err := store.Save(reg); err != nil {
		return err
	}

	// Assume-yes only clears the registry; erasing files stays manual.
	if ctx.AssumeYes || len(removed) == 0 {
		return nil
	}

	if ctx.Prompter.Confirm("Delete every tool from the file system?", false) {
		for _, t := range removed {
			if t.IsInstalled() {
				if err := fileutil.Delete(t.Directory); err != nil {
					return fmt.Errorf("failed to delete %s: %w", t.Directory, err)
				}
				logger.Infof(ctx, "%s deleted", t.Directory)
			}
		}
		return nil
	}

	logger.Info(ctx, "Enter comma-separated list of indexes to remove (i.e. 1,3,4)")
	for i, t := range removed {
		logger.Write(ctx, fmt.Sprintf("[%d]: %s", i+1, t.Name))
	}

	indexes := ctx.Prompter.SelectIndexes(">>>", len(removed))
	if len(indexes) == 0 {
		logger.Info(ctx, "No tool will be erased from file system")
		return nil
	}
	for _, i := range indexes {
		t := removed[i]
		if err := fileutil.Delete(t.Directory); err != nil {
			return fmt.Errorf("failed to delete %s: %w", t.Directory, err)
		}
		logger.Infof(ctx, "%s deleted successfully from file system", t.Name)
	}
	return nil
}

func toolsFromNameFile(reg *registry.Registry, path string) ([]*tool.Tool, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied path
	if err != nil {
		return nil, fmt.Errorf("the file %s doesn't exist or it isn't readable", path)
	}
	defer func() {
		_ = f.Close()
	}()

	var doomed []*tool.Tool
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		doomed = append(doomed, query.Find(reg.Tools, query.Criteria{Names: []string{name}})...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doomed, nil
}
