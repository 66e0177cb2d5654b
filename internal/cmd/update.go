package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/manager"
)

// CmdUpdate creates the command that pulls installed repositories.
func CmdUpdate() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "update [flags]",
			Short: "Update added tools",
			Long: `Pull the latest changes for the selected repository tools.

Tools that are not installed yet are skipped, as are local files.
This is the command the scheduled cron job runs with --all.
`,
			Args: cobra.NoArgs,
		}, updateFlags, runUpdate,
	)
}

var updateFlags = []commandLineFlag{nameFlag, repoURLFlag, allFlag, logFlag, assumeYesFlag}

func runUpdate(ctx *Context, _ []string) error {
	store, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}

	tools, all, err := selectTools(ctx, reg)
	if err != nil {
		return err
	}

	mgr := ctx.NewManager(store, reg)

	updated := 0
	var names []string
	for _, t := range tools {
		if !t.IsInstalled() {
			if !all {
				logger.Warnf(ctx, "'%s' is not installed", t.Name)
			}
			continue
		}

		outcome, err := mgr.Update(ctx, t)
		switch outcome {
		case manager.UpdateOK:
			updated++
			names = append(names, t.Name)
			if !all {
				logger.Infof(ctx, "Tool '%s' updated successfully", t.Name)
			}
		case manager.UpdateUpToDate:
			if !all {
				logger.Warnf(ctx, "Tool '%s' is already up to date", t.Name)
			}
		case manager.UpdateLocalSkipped:
			logger.Infof(ctx, "No need to update local file '%s'", t.Directory)
		case manager.UpdateFailed:
			logger.Warn(ctx, "Update failed", "name", t.Name, "err", err)
		}
	}

	if all {
		summary := ""
		if updated > 0 {
			summary = fmt.Sprintf("%v, ", names)
		}
		logger.Infof(ctx, "Updated %s%d/%d repos", summary, updated, len(tools))
	}
	return nil
}
