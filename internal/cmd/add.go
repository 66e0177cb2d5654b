package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/manager"
	"github.com/tman-org/tman/internal/registry"
	"github.com/tman-org/tman/internal/stringutil"
	"github.com/tman-org/tman/internal/tool"
)

// ErrAddTarget is returned when neither a tool argument nor an input file
// is supplied, or both are.
var ErrAddTarget = errors.New("provide either a repository URL / local path or --in-file")

// CmdAdd creates the command that registers new tools.
func CmdAdd() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "add [flags] [repo_url|local_pathname]",
			Short: "Add new tools",
			Long: `Register a git repository or a local file/directory as a managed tool.

With automatic install enabled, repositories are cloned immediately.
An input file adds several tools at once, one per line:

  repo_url,tag1,tag2,d=/custom/install/dir

The trailing d= segment is optional and overrides the default
installation directory for that line.
`,
			Args: cobra.MaximumNArgs(1),
		}, addFlags, runAdd,
	)
}

var addFlags = []commandLineFlag{
	tagsFlag,
	{name: "install-dir", shorthand: "d", usage: "installation directory"},
	{name: "in-file", shorthand: "i", usage: "add tools listed in a file"},
	logFlag,
	assumeYesFlag,
}

func runAdd(ctx *Context, args []string) error {
	inFile, _ := ctx.Command.Flags().GetString("in-file")
	if (len(args) == 0) == (inFile == "") {
		return ErrAddTarget
	}

	store, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}
	mgr := ctx.NewManager(store, reg)

	if inFile != "" {
		return addFromFile(ctx, mgr, reg, inFile)
	}

	tags, _ := ctx.Command.Flags().GetString("tags")
	installDir, _ := ctx.Command.Flags().GetString("install-dir")

	directory := reg.DefaultDir()
	if installDir != "" {
		directory = installDir
	}
	directory = fileutil.MustResolvePath(directory)
	if !fileutil.IsDir(directory) || !fileutil.IsWritable(directory) {
		return fmt.Errorf("%s doesn't exist or it isn't writable", directory)
	}

	candidate, err := buildCandidate(ctx, mgr, args[0], directory, installDir != "",
		stringutil.SanitizeTags(tags))
	if err != nil {
		return err
	}
	if candidate == nil {
		return nil
	}

	outcome, err := mgr.Add(ctx, candidate)
	if err != nil {
		return err
	}
	return reportAdd(ctx, candidate, outcome)
}

// buildCandidate turns the positional argument into a tool. A git-looking
// URL becomes a repository; anything else is treated as a local path, moved
// under the destination directory when one was explicitly requested.
func buildCandidate(ctx *Context, mgr *manager.Manager, arg, directory string, dirRequested bool, tags []string) (*tool.Tool, error) {
	now := time.Now().Unix()

	if isGitURL(arg) {
		return tool.NewRepository(arg, directory,
			tool.WithTags(tags), tool.WithAddDate(now)), nil
	}

	path := fileutil.MustResolvePath(arg)
	if !fileutil.FileExists(path) || !fileutil.IsWritable(path) {
		return nil, fmt.Errorf("%s doesn't exist or it's not writable", path)
	}

	if dirRequested && path != directory {
		placed, outcome, err := mgr.PlaceLocal(ctx, path, directory, ctx.Prompter)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case manager.AddAlreadyManaged:
			logger.Infof(ctx, "Tool %s is already managed", fileutil.BaseName(path))
			return nil, nil
		case manager.AddSkipped:
			return nil, nil
		}
		placed.Tags = tags
		return placed, nil
	}

	return tool.NewLocalFile(path, tool.WithTags(tags), tool.WithAddDate(now)), nil
}

// addFromFile registers every parseable line of the input file and reports
// a summary.
func addFromFile(ctx *Context, mgr *manager.Manager, reg *registry.Registry, path string) error {
	f, err := os.Open(path) //nolint:gosec // user-supplied path
	if err != nil {
		return fmt.Errorf("file %s doesn't exist, please provide a valid path", path)
	}
	defer func() {
		_ = f.Close()
	}()

	var candidates []*tool.Tool
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		candidate, err := parseToolLine(ctx, mgr, scanner.Text(), reg.DefaultDir())
		if err != nil {
			return err
		}
		if candidate != nil {
			candidates = append(candidates, candidate)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	imported := 0
	for _, candidate := range candidates {
		outcome, err := mgr.Add(ctx, candidate)
		if err != nil {
			return err
		}
		if outcome == manager.AddOK {
			imported++
		} else {
			_ = reportAdd(ctx, candidate, outcome)
		}
	}
	logger.Infof(ctx, "Successfully imported %d/%d tools", imported, len(candidates))
	return nil
}

// parseToolLine parses one input-file line: the URL or path first, then
// tags, then an optional d=<dir> destination override at the end.
func parseToolLine(ctx *Context, mgr *manager.Manager, line, defaultDir string) (*tool.Tool, error) {
	var fields []string
	for _, field := range strings.Split(strings.TrimSpace(line), ",") {
		if field != "" {
			fields = append(fields, field)
		}
	}
	if len(fields) == 0 {
		return nil, nil
	}

	url := fields[0]
	var tags []string
	for _, field := range fields[1:] {
		if !strings.HasPrefix(field, "d=") {
			tags = append(tags, field)
		}
	}
	tags = stringutil.SanitizeTags(strings.Join(tags, ","))

	directory := defaultDir
	if last := fields[len(fields)-1]; strings.HasPrefix(last, "d=") {
		directory = fileutil.MustResolvePath(strings.TrimPrefix(last, "d="))
	}

	now := time.Now().Unix()
	if isGitURL(url) {
		return tool.NewRepository(url, directory,
			tool.WithTags(tags), tool.WithAddDate(now)), nil
	}

	src := fileutil.MustResolvePath(url)
	dst := filepath.Join(directory, fileutil.BaseName(src))
	if src == dst {
		return tool.NewLocalFile(src, tool.WithTags(tags), tool.WithAddDate(now)), nil
	}

	if !fileutil.FileExists(src) {
		logger.Infof(ctx, "Cannot add %s, pathname does not exist", src)
		return nil, nil
	}
	placed, _, err := mgr.PlaceLocal(ctx, src, directory, ctx.Prompter)
	if err != nil || placed == nil {
		return nil, err
	}
	placed.Tags = tags
	return placed, nil
}

func reportAdd(ctx *Context, t *tool.Tool, outcome manager.AddOutcome) error {
	switch outcome {
	case manager.AddOK:
		logger.Infof(ctx, "'%s' added successfully", t.Name)
		return nil
	case manager.AddDestinationExists:
		return fmt.Errorf("'%s' not cloned, '%s' already exists", t.Name, t.Directory)
	case manager.AddCloneFailed:
		return fmt.Errorf("'%s' not cloned, '%s' seems not valid", t.Name, t.URL)
	case manager.AddAlreadyManaged:
		return fmt.Errorf("'%s' is already managed", t.Name)
	case manager.AddMissingSource:
		return fmt.Errorf("'%s' does not exist", t.Name)
	case manager.AddNestedManaged:
		return fmt.Errorf("'%s' contains repositories that are already managed", t.Directory)
	default:
		return nil
	}
}

// isGitURL is deliberately loose: anything that looks like an http or git
// URL is treated as a repository, everything else as a local path.
func isGitURL(url string) bool {
	return strings.HasPrefix(url, "http") || strings.HasPrefix(url, "git")
}
