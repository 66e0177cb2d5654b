package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tman-org/tman/internal/cmdutil"
	"github.com/tman-org/tman/internal/config"
	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/gitsync"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/manager"
	"github.com/tman-org/tman/internal/registry"
)

// Context holds the per-invocation state of a command: resolved paths, the
// interactive prompter and an optional log file the output is redirected to.
type Context struct {
	context.Context

	Command   *cobra.Command
	Paths     config.Paths
	AssumeYes bool
	Prompter  *cmdutil.Prompter

	logFile *os.File
}

// NewContext resolves paths, validates the log flag and builds the logger
// context for a command invocation.
func NewContext(cmd *cobra.Command, flags []commandLineFlag) (*Context, error) {
	ctx := cmd.Context()

	bindFlags(cmd, flags...)

	assumeYes := viper.GetBool("assume-yes")
	prompter := cmdutil.StdPrompter(assumeYes)

	var opts []logger.Option
	if viper.GetBool("verbose") || os.Getenv("DEBUG") != "" {
		opts = append(opts, logger.WithDebug())
	}
	if format := viper.GetString("log-format"); format != "" {
		opts = append(opts, logger.WithFormat(format))
	}

	var logFile *os.File
	if logPath := viper.GetString("log"); logPath != "" {
		f, err := openLogFile(logPath, prompter)
		if err != nil {
			return nil, err
		}
		logFile = f
		opts = append(opts, logger.WithWriter(f), logger.WithQuiet())
	}
	ctx = logger.WithLogger(ctx, logger.NewLogger(opts...))

	paths := config.ResolvePaths()
	if dir := viper.GetString("config"); dir != "" {
		paths = config.PathsFor(dir)
	}

	return &Context{
		Context:   ctx,
		Command:   cmd,
		Paths:     paths,
		AssumeYes: assumeYes,
		Prompter:  prompter,
		logFile:   logFile,
	}, nil
}

// Close releases resources held by the context.
func (c *Context) Close() {
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}

// OpenRegistry loads the registry, running the first-run wizard when no
// configuration exists yet.
func (c *Context) OpenRegistry() (*registry.Store, *registry.Registry, error) {
	store := registry.NewStore(c.Paths.ConfigDir)
	reg, err := store.Load(c, c.Prompter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return store, reg, nil
}

// NewManager wires a lifecycle manager over the loaded registry.
func (c *Context) NewManager(store *registry.Store, reg *registry.Registry) *manager.Manager {
	return manager.New(store, reg, gitsync.New())
}

// openLogFile validates and opens the --log target. An existing regular
// file is overwritten only after confirmation; a path that cannot be
// created is rejected.
func openLogFile(path string, prompter *cmdutil.Prompter) (*os.File, error) {
	path = fileutil.MustResolvePath(path)

	if fileutil.FileExists(path) {
		if fileutil.IsDir(path) || !fileutil.IsWritable(path) {
			return nil, fmt.Errorf("log file %s is not writable", path)
		}
		if !prompter.Confirm(fmt.Sprintf("'%s' exists, overwrite?", path), false) {
			return nil, fmt.Errorf("log file %s left untouched", path)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

// NewCommand wraps a cobra command with flag registration, context setup
// and uniform error handling.
func NewCommand(cmd *cobra.Command, flags []commandLineFlag, runFunc func(ctx *Context, args []string) error) *cobra.Command {
	initFlags(cmd, flags...)

	cmd.SilenceUsage = true
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext(cmd, flags)
		if err != nil {
			fmt.Printf("Initialization error: %v\n", err)
			os.Exit(1)
		}
		defer ctx.Close()

		if err := runFunc(ctx, args); err != nil {
			logger.Error(ctx.Context, "Command failed", "err", err)
			os.Exit(1)
		}
		return nil
	}

	return cmd
}
