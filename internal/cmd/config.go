package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/build"
	"github.com/tman-org/tman/internal/cron"
	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/logger"
)

var (
	autoInstallOn  = []string{"true", "on", "yes"}
	autoInstallOff = []string{"false", "off", "no"}

	cronActions = []string{"create", "update", "delete", "enable", "disable", "status"}
)

// CmdConfig creates the command that manages settings and the scheduled
// update job.
func CmdConfig() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "config [flags]",
			Short: "Manage configurations",
			Long: `Change the default installation directory, toggle automatic install,
or manage the crontab entry that updates every tool on a schedule.
Without flags the current settings are printed.
`,
			Args: cobra.NoArgs,
		}, configFlags, runConfig,
	)
}

var configFlags = []commandLineFlag{
	{name: "default-dir", shorthand: "d", usage: "change the default installation directory"},
	{name: "auto-install", shorthand: "i", usage: "set automatic install on or off"},
	{name: "cron-job", shorthand: "j", usage: "create, update, delete, enable, disable or status of the cron job"},
	logFlag,
}

func runConfig(ctx *Context, _ []string) error {
	flags := ctx.Command.Flags()
	defaultDir, _ := flags.GetString("default-dir")
	autoInstall, _ := flags.GetString("auto-install")
	cronJob, _ := flags.GetString("cron-job")

	if os.Getuid() == 0 {
		logger.Warn(ctx, "You are root. It's preferable to manage your configuration with a non-privileged account.")
		if !ctx.Prompter.Confirm("Do you want to continue anyway?", false) {
			return errors.New("aborted")
		}
		logger.Warn(ctx, "You have been warned!")
	}

	store, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}

	switch {
	case defaultDir != "":
		dir := fileutil.MustResolvePath(defaultDir)
		if !fileutil.IsDir(dir) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
		}
		reg.DefaultInstallDir = dir
		logger.Infof(ctx, "Default installation directory changed in %s", dir)
		return store.Save(reg)

	case autoInstall != "":
		value := strings.ToLower(autoInstall)
		switch {
		case contains(autoInstallOn, value):
			reg.AutoInstall = true
		case contains(autoInstallOff, value):
			reg.AutoInstall = false
		default:
			return fmt.Errorf("please select one among %v", append(autoInstallOn, autoInstallOff...))
		}
		state := "disabled"
		if reg.AutoInstall {
			state = "enabled"
		}
		logger.Infof(ctx, "Automatic install has been %s", state)
		return store.Save(reg)

	case cronJob != "":
		if !contains(cronActions, cronJob) {
			return fmt.Errorf("you have to choose one among %v arguments", cronActions)
		}
		return runCronAction(ctx, cronJob)

	default:
		logger.Write(ctx, fmt.Sprintf("auto-install: %t", reg.AutoInstall))
		logger.Write(ctx, fmt.Sprintf("default-dir : %s", reg.DefaultInstallDir))
		return nil
	}
}

func runCronAction(ctx *Context, action string) error {
	jobs := cron.New()

	switch action {
	case "create", "update":
		return cronCreateUpdate(ctx, jobs, action)

	case "delete":
		if err := jobs.Delete(ctx); err != nil {
			if errors.Is(err, cron.ErrNoJob) {
				return errors.New("cron job not found")
			}
			return err
		}
		logger.Info(ctx, "Cron job deleted")
		return nil

	case "status":
		job, err := jobs.Load(ctx)
		if errors.Is(err, cron.ErrNoJob) {
			return errors.New("cron job not found")
		}
		if err != nil {
			return err
		}
		state := "disabled"
		if job.Enabled {
			state = "enabled"
		}
		logger.Infof(ctx, "Cron job found: %s", job)
		logger.Infof(ctx, "Cron job status: %s", state)
		logger.Infof(ctx, "Cron job validity: %t", job.Validate() == nil)
		return nil

	default: // enable, disable
		job, err := jobs.SetEnabled(ctx, action == "enable")
		if errors.Is(err, cron.ErrNoJob) {
			return errors.New("cron job not found")
		}
		if err != nil {
			return err
		}
		state := "disabled"
		if job.Enabled {
			state = "enabled"
		}
		logger.Infof(ctx, "Cron job has been %s", state)
		return nil
	}
}

// cronCreateUpdate walks the schedule wizard and replaces or creates the
// managed crontab entry.
func cronCreateUpdate(ctx *Context, jobs *cron.Manager, action string) error {
	existing, err := jobs.Load(ctx)
	switch {
	case err == nil:
		if action == "create" {
			logger.Warn(ctx, "A cron job does already exist")
		}
		if !ctx.Prompter.Confirm(fmt.Sprintf("Do you want to update existing job: %s", existing), false) {
			return errors.New("aborted")
		}
	case errors.Is(err, cron.ErrNoJob):
		if action == "update" {
			logger.Warn(ctx, "No cron job to update found")
			if !ctx.Prompter.Confirm("Do you want to create a new cron job", true) {
				return errors.New("aborted")
			}
		}
	default:
		return err
	}

	printCronWizardBanner(ctx)

	mnt := ctx.Prompter.Prompt("Insert minute (0 - 59)", "*")
	hrs := ctx.Prompter.Prompt("Insert hour (0 - 23)", "*")
	dom := ctx.Prompter.Prompt("Insert day of the month (1 - 31)", "*")
	mth := ctx.Prompter.Prompt("Insert month (1 - 12)", "*")
	dow := ctx.Prompter.Prompt("Insert day of the week (0 - 6) (Sunday to Saturday)", "*")
	logPath := ctx.Prompter.Prompt("Enter a file pathname for logging", ctx.Paths.CronLogFile)

	schedule := strings.Join([]string{
		strings.ReplaceAll(mnt, " ", ""),
		strings.ReplaceAll(hrs, " ", ""),
		strings.ReplaceAll(dom, " ", ""),
		strings.ReplaceAll(mth, " ", ""),
		strings.ReplaceAll(dow, " ", ""),
	}, " ")

	job := cron.Job{
		Schedule: schedule,
		Command:  fmt.Sprintf("%s update --all -y -l %s", executablePath(), logPath),
		Enabled:  true,
	}
	if err := job.Validate(); err != nil {
		return err
	}

	logger.Infof(ctx, "You are about to write this job: '%s'", job)
	if !ctx.Prompter.Confirm("Do you want to save the cron job?", false) {
		return errors.New("aborted")
	}
	if err := jobs.Save(ctx, job); err != nil {
		return err
	}
	logger.Info(ctx, "Cron job saved!")
	return nil
}

func printCronWizardBanner(ctx *Context) {
	logger.Write(ctx, "We assume that you know what a cron job is, if not please read first https://en.wikipedia.org/wiki/Cron")
	logger.Write(ctx, "Please use standard cron tab notation:")
	logger.Write(ctx, "┌───────────── minute (0 - 59)")
	logger.Write(ctx, "│ ┌───────────── hour (0 - 23)")
	logger.Write(ctx, "│ │ ┌───────────── day of the month (1 - 31)")
	logger.Write(ctx, "│ │ │ ┌───────────── month (1 - 12)")
	logger.Write(ctx, "│ │ │ │ ┌───────────── day of the week (0 - 6) (Sunday to Saturday)")
	logger.Write(ctx, "* * * * * command to execute")
	logger.Write(ctx, "Leave an answer blank to keep the *")
}

// executablePath resolves the binary the cron job should run: the one on
// PATH when available, the current executable otherwise.
func executablePath() string {
	if path, err := exec.LookPath(build.Slug); err == nil {
		return path
	}
	if path, err := os.Executable(); err == nil {
		return path
	}
	return build.Slug
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
