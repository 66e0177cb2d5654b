package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/cmdutil"
	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/gitsync"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/scanner"
	"github.com/tman-org/tman/internal/tool"
)

// CmdScan creates the command that discovers git clones on disk and offers
// them for registration.
func CmdScan() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "scan [root-dir]",
			Short: "Scan the file system seeking repositories",
			Long: `Walk the file system from root-dir (the home directory by default)
looking for git clones, then pick which ones to register. Found clones
are registered as already installed.
`,
			Args: cobra.MaximumNArgs(1),
		}, nil, runScan,
	)
}

func runScan(ctx *Context, args []string) error {
	root := fileutil.MustGetUserHomeDir()
	if len(args) > 0 {
		root = fileutil.MustResolvePath(args[0])
	}
	if !fileutil.IsDir(root) {
		return fmt.Errorf("%s is not a directory", root)
	}

	logger.Infof(ctx, "Using %s as root dir", root)
	logger.Info(ctx, "Scanning system for git repositories. This may take a while")

	walkCtx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	spinner := cmdutil.NewSpinner(os.Stdout, "searching...")
	spinner.Start()

	sync := gitsync.New()
	found, errc := scanner.New(sync).Scan(walkCtx, root)

	var candidates []scanner.Candidate
	for c := range found {
		candidates = append(candidates, c)
	}
	spinner.Stop()
	if err := <-errc; err != nil {
		return err
	}
	if walkCtx.Err() != nil {
		return walkCtx.Err()
	}

	logger.Warnf(ctx, "%d repositories found", len(candidates))
	if len(candidates) == 0 {
		return nil
	}

	for i, c := range candidates {
		logger.Write(ctx, fmt.Sprintf("%d. %s, %s", i+1, fileutil.BaseName(c.Directory), c.Directory))
	}

	var chosen []int
	if ctx.Prompter.Confirm("Do you want to add all of them?", false) {
		logger.Info(ctx, "All repositories found will be added")
		for i := range candidates {
			chosen = append(chosen, i)
		}
	} else {
		chosen = ctx.Prompter.SelectIndexes(
			"Enter the numbers of the repo you want to add, separated by a comma", len(candidates))
		if len(chosen) == 0 {
			logger.Info(ctx, "No repository will be added")
			return nil
		}
	}

	store, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}

	for _, i := range chosen {
		c := candidates[i]
		now := time.Now().Unix()
		repo := tool.NewRepository(c.URL, c.Directory,
			tool.WithName(fileutil.BaseName(c.Directory)),
			tool.WithDates(&now, &now, &now))

		if reg.HasTool(repo.Name) {
			logger.Warnf(ctx, "%s has already been added. Skipping...", repo.Name)
			continue
		}
		reg.Add(repo)
		logger.Infof(ctx, "%s successfully added", repo.Name)
	}
	return store.Save(reg)
}
