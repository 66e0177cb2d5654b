package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/stringutil"
)

// ErrNoModification is returned when modify is invoked with nothing to do.
var ErrNoModification = errors.New("provide --new-dir, --tag-add, --tag-rm or --tag-mv")

// CmdModify creates the command that edits a registered tool in place.
func CmdModify() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "modify [flags] <tool-name>",
			Short: "Modify installation directory and tags",
			Long: `Change the installation directory of a tool, or add, remove and
rename its tags. Moving the directory relocates the tool on disk too.
`,
			Args: cobra.ExactArgs(1),
		}, modifyFlags, runModify,
	)
}

var modifyFlags = []commandLineFlag{
	{name: "new-dir", shorthand: "d", usage: "new destination directory"},
	{name: "tag-add", shorthand: "A", usage: "comma-separated list of tags to add"},
	{name: "tag-rm", shorthand: "R", usage: "comma-separated list of tags to remove"},
	{name: "tag-mv", shorthand: "M", usage: "rename a tag: <old>,<new>"},
	logFlag,
}

func runModify(ctx *Context, args []string) error {
	flags := ctx.Command.Flags()
	newDir, _ := flags.GetString("new-dir")
	tagAdd, _ := flags.GetString("tag-add")
	tagRm, _ := flags.GetString("tag-rm")
	tagMv, _ := flags.GetString("tag-mv")

	if newDir == "" && tagAdd == "" && tagRm == "" && tagMv == "" {
		return ErrNoModification
	}

	store, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}

	t := reg.Tool(args[0])
	if t == nil {
		return fmt.Errorf("there's no such tool, make sure you wrote the correct name")
	}

	if newDir != "" {
		dir := fileutil.MustResolvePath(newDir)
		if !fileutil.IsDir(dir) || !fileutil.IsWritable(dir) {
			return fmt.Errorf("the directory '%s' does not exist or you don't have enough access rights", dir)
		}

		dst := dir + "/" + t.Name
		if err := fileutil.Move(t.Directory, dst); err != nil {
			return fmt.Errorf("failed to move %s: %w", t.Directory, err)
		}
		t.SetDirectory(dir)
		logger.Infof(ctx, "New tool directory set successfully")
	}

	if tagAdd != "" {
		var added []string
		for _, tag := range stringutil.SanitizeTags(tagAdd) {
			if !t.HasTag(tag) {
				t.Tags = append(t.Tags, tag)
				added = append(added, tag)
			}
		}
		logger.Infof(ctx, "Following tags have been added: %v", added)
	}

	if tagRm != "" {
		var removed []string
		for _, tag := range stringutil.SanitizeTags(tagRm) {
			if t.HasTag(tag) {
				t.Tags = removeTag(t.Tags, tag)
				removed = append(removed, tag)
			}
		}
		if len(removed) > 0 {
			logger.Infof(ctx, "Following tags have been removed: %v", removed)
		} else {
			logger.Infof(ctx, "No tags removed")
		}
	}

	if tagMv != "" {
		pair := stringutil.SanitizeTags(tagMv)
		if len(pair) != 2 {
			return fmt.Errorf("--tag-mv expects two comma-separated tags, got %q", tagMv)
		}
		oldTag, newTag := pair[0], pair[1]

		if !t.HasTag(oldTag) {
			return fmt.Errorf("the tool '%s' has no tag '%s'", t.Name, oldTag)
		}
		if t.HasTag(newTag) {
			return fmt.Errorf("the tool '%s' already has tag '%s'", t.Name, newTag)
		}
		t.Tags = append(removeTag(t.Tags, oldTag), newTag)
		logger.Infof(ctx, "%s tag has been renamed in %s", oldTag, newTag)
	}

	reg.Update(t)
	return store.Save(reg)
}

func removeTag(tags []string, tag string) []string {
	var kept []string
	for _, have := range tags {
		if have != tag {
			kept = append(kept, have)
		}
	}
	return kept
}
