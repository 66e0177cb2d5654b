package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/codec"
	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/query"
	"github.com/tman-org/tman/internal/stringutil"
	"github.com/tman-org/tman/internal/tool"
)

// CmdExport creates the command that packs the configuration and selected
// tools into a ZIP archive.
func CmdExport() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "export [flags]",
			Short: "Export configuration file and tools",
			Long: `Write the registry settings and the selected tools to a ZIP archive.

The archive always contains a conf.tman entry: line one holds the
settings, every following line one tool. Tool timestamps are not part
of the export. The selected tools' directories are compressed next to
the configuration entry.
`,
			Args: cobra.NoArgs,
		}, exportFlags, runExport,
	)
}

var exportFlags = []commandLineFlag{
	{name: "outfile", shorthand: "o", usage: "output archive path", required: true},
	typesFlag,
	tagsFlag,
	logFlag,
	assumeYesFlag,
}

func runExport(ctx *Context, _ []string) error {
	flags := ctx.Command.Flags()
	outfile, _ := flags.GetString("outfile")
	types, _ := flags.GetString("types")
	tags, _ := flags.GetString("tags")

	outfile = fileutil.MustResolvePath(outfile)
	if err := validateOutfile(ctx, outfile); err != nil {
		return err
	}

	_, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}

	selected, err := selectExportTools(ctx, reg.Tools, types, tags)
	if err != nil {
		return err
	}

	var conf bytes.Buffer
	if err := codec.Encode(&conf, reg, selected); err != nil {
		return err
	}
	logger.Info(ctx, "Configuration file saved")

	if n := len(selected); n > 0 {
		noun := "tools"
		if n == 1 {
			noun = "tool"
		}
		logger.Infof(ctx, "Compressing %d %s, it may take a while..", n, noun)
	}

	if err := codec.WriteArchive(ctx, outfile, conf.Bytes(), installedOnly(selected)); err != nil {
		return err
	}
	logger.Info(ctx, "Archive created successfully")
	return nil
}

func selectExportTools(ctx *Context, tools []*tool.Tool, types, tags string) ([]*tool.Tool, error) {
	if types != "" || tags != "" {
		return query.Find(tools, query.Criteria{
			Tags:  stringutil.SanitizeTags(tags),
			Kinds: query.ParseKinds(strings.ReplaceAll(types, " ", "")),
		}), nil
	}

	if ctx.Prompter.Confirm("Export every tool?", true) {
		return tools, nil
	}
	if ctx.Prompter.Confirm("Export local tools only?", true) {
		var locals []*tool.Tool
		for _, t := range tools {
			if t.IsLocalFile() {
				locals = append(locals, t)
			}
		}
		return locals, nil
	}
	return nil, nil
}

// installedOnly filters out tools with nothing on disk so the archive step
// does not fail on never-installed entries.
func installedOnly(tools []*tool.Tool) []*tool.Tool {
	var found []*tool.Tool
	for _, t := range tools {
		if t.IsInstalled() {
			found = append(found, t)
		}
	}
	return found
}

func validateOutfile(ctx *Context, path string) error {
	if fileutil.IsDir(path) {
		return fmt.Errorf("%s is a directory", path)
	}
	if fileutil.FileExists(path) {
		if !fileutil.IsWritable(path) {
			return fmt.Errorf("the file %s is not writable", path)
		}
		if !ctx.Prompter.Confirm(fmt.Sprintf("Overwrite %s ?", path), false) {
			return fmt.Errorf("export aborted")
		}
		return nil
	}
	if !fileutil.IsWritable(filepath.Dir(path)) {
		return fmt.Errorf("the directory %s is not writable", filepath.Dir(path))
	}
	return nil
}
