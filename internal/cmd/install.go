package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/cmdutil"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/manager"
	"github.com/tman-org/tman/internal/query"
	"github.com/tman-org/tman/internal/registry"
	"github.com/tman-org/tman/internal/tool"
)

// ErrNoSelection is returned when a command that operates on registered
// tools is invoked without any selection flag.
var ErrNoSelection = errors.New("select tools with --name, --repo-url or --all")

// CmdInstall creates the command that clones registered repositories.
func CmdInstall() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "install [flags]",
			Short: "Install added tools",
			Long: `Clone the selected repository tools into their registered directories.

When the destination directory already exists you choose between leaving
it alone, recloning from scratch, or pulling updates in place. With
--assume-yes the update-in-place option is taken.
`,
			Args: cobra.NoArgs,
		}, installFlags, runInstall,
	)
}

var installFlags = []commandLineFlag{nameFlag, repoURLFlag, allFlag, logFlag, assumeYesFlag}

func runInstall(ctx *Context, _ []string) error {
	store, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}

	tools, all, err := selectTools(ctx, reg)
	if err != nil {
		return err
	}
	if len(tools) == 0 {
		return errors.New("there's no tool to install")
	}

	mgr := ctx.NewManager(store, reg)
	resolver := collisionPrompt{prompter: ctx.Prompter, assumeYes: ctx.AssumeYes}

	installed := 0
	var names []string
	for _, t := range tools {
		if !t.IsRepository() {
			continue
		}
		outcome, err := mgr.Install(ctx, t, resolver)
		switch outcome {
		case manager.InstallCloned, manager.InstallReinstalled:
			installed++
			names = append(names, t.Name)
			if !all {
				logger.Infof(ctx, "'%s' cloned successfully", t.Name)
			}
		case manager.InstallUpdated:
			logger.Infof(ctx, "'%s' updated successfully", t.Name)
		case manager.InstallUpToDate:
			logger.Infof(ctx, "'%s' is already up-to-date", t.Name)
		case manager.InstallLeft:
			continue
		case manager.InstallFailed:
			logger.Warn(ctx, "Install failed", "name", t.Name, "err", err)
		}
	}

	if all {
		summary := ""
		if installed > 0 {
			summary = fmt.Sprintf("%v, ", names)
		}
		logger.Infof(ctx, "Installed %s%d/%d tools", summary, installed, len(tools))
	}
	return nil
}

// selectTools resolves the shared --name / --repo-url / --all selection.
// The second return value reports whether --all was used, which switches
// several commands to summary-style output.
func selectTools(ctx *Context, reg *registry.Registry) ([]*tool.Tool, bool, error) {
	name, _ := ctx.Command.Flags().GetString("name")
	url, _ := ctx.Command.Flags().GetString("repo-url")
	all, _ := ctx.Command.Flags().GetBool("all")

	if name == "" && url == "" && !all {
		return nil, false, ErrNoSelection
	}

	switch {
	case name != "":
		return query.Find(reg.Tools, query.Criteria{Names: []string{name}}), false, nil
	case url != "":
		return query.Find(reg.Tools, query.Criteria{URL: url}), false, nil
	default:
		return reg.List(true), true, nil
	}
}

// collisionPrompt asks the user what to do when the clone destination
// already exists. Assume-yes picks update-in-place, which is what the cron
// job relies on.
type collisionPrompt struct {
	prompter  *cmdutil.Prompter
	assumeYes bool
}

func (p collisionPrompt) Resolve(name, directory string) manager.Resolution {
	if p.assumeYes {
		return manager.ResolutionUpdateInPlace
	}

	choice := p.prompter.Prompt(fmt.Sprintf(
		"Directory '%s' found, what to do?\n[1] nothing; [2] delete & clone; [3] update\n>>>", directory), "1")
	switch choice {
	case "2":
		return manager.ResolutionReinstall
	case "3":
		return manager.ResolutionUpdateInPlace
	default:
		return manager.ResolutionKeep
	}
}
