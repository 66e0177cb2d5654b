package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/codec"
	"github.com/tman-org/tman/internal/fileutil"
	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/query"
	"github.com/tman-org/tman/internal/registry"
	"github.com/tman-org/tman/internal/stringutil"
	"github.com/tman-org/tman/internal/tool"
)

// CmdImport creates the command that restores a previously exported
// configuration archive.
func CmdImport() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "import [flags]",
			Short: "Import configuration file and tools",
			Long: `Restore the settings and tools of an archive created with export.

The archive must contain a conf.tman configuration entry. Tool
directories found inside the archive are moved to their registered
locations; existing directories are overwritten only after
confirmation. With automatic install enabled, missing repositories are
cloned afterwards.
`,
			Args: cobra.NoArgs,
		}, importFlags, runImport,
	)
}

var importFlags = []commandLineFlag{
	{name: "infile", shorthand: "i", usage: "input archive path", required: true},
	typesFlag,
	tagsFlag,
	logFlag,
	assumeYesFlag,
}

func runImport(ctx *Context, _ []string) error {
	flags := ctx.Command.Flags()
	infile, _ := flags.GetString("infile")
	types, _ := flags.GetString("types")
	tags, _ := flags.GetString("tags")

	infile = fileutil.MustResolvePath(infile)
	if !fileutil.FileExists(infile) {
		return fmt.Errorf("'%s' does not exist", infile)
	}

	importKinds := query.ParseKinds(strings.ReplaceAll(types, " ", ""))
	importTags := stringutil.SanitizeTags(tags)

	store := registry.NewStore(ctx.Paths.ConfigDir)
	reg, err := store.LoadForImport()
	if errors.Is(err, registry.ErrConfigMissing) {
		logger.Info(ctx, "Configuration file not found")
		reg, err = store.FirstConfiguration(ctx, ctx.Prompter)
	}
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "export-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = fileutil.Delete(tmpDir)
	}()

	extracted, err := codec.ExtractArchive(ctx, infile, tmpDir)
	if errors.Is(err, codec.ErrNoConfEntry) {
		return errors.New("no configuration file detected, quitting..")
	}
	if err != nil {
		return fmt.Errorf("the file '%s' doesn't seem a valid archive: %w", infile, err)
	}

	conf, err := os.Open(tmpDir + "/" + codec.ConfFileName) //nolint:gosec // file extracted into our temp dir
	if err != nil {
		return err
	}
	snap, err := codec.Decode(conf)
	_ = conf.Close()
	if err != nil {
		return err
	}

	if len(extracted) > 0 {
		logger.Info(ctx, "Importing tools, this may take a while..")
	}

	mergeSnapshot(ctx, reg, snap, importKinds, importTags)
	if err := store.Save(reg); err != nil {
		return err
	}
	logger.Info(ctx, "Configuration file saved")

	if len(extracted) > 0 {
		if err := placeImportedTools(ctx, reg, tmpDir, extracted, importKinds, importTags); err != nil {
			return err
		}
		if err := store.Save(reg); err != nil {
			return err
		}
	}

	mgr := ctx.NewManager(store, reg)
	mgr.AutoInstall(ctx)
	return nil
}

// mergeSnapshot folds the decoded configuration into the registry: the
// scalar settings always win, tools are filtered by the import criteria and
// get a fresh add date. A name clash is resolved by confirmation.
func mergeSnapshot(ctx *Context, reg *registry.Registry, snap *codec.Snapshot, kinds []tool.Kind, tags []string) {
	if snap.DefaultInstallDir != "" {
		reg.DefaultInstallDir = snap.DefaultInstallDir
	}
	reg.AutoInstall = snap.AutoInstall

	now := time.Now().Unix()
	for _, t := range snap.Tools {
		if !matchesImport(t, kinds, tags) {
			continue
		}
		t.AddDate = &now

		if reg.HasTool(t.Name) {
			if ctx.Prompter.Confirm(fmt.Sprintf("%s is already managed, overwrite its configuration?", t.Name), true) {
				reg.Update(t)
			}
			continue
		}
		reg.Add(t)
	}
}

// placeImportedTools moves the archive's tool directories to the locations
// the registry expects them at.
func placeImportedTools(ctx *Context, reg *registry.Registry, tmpDir string, extracted []string, kinds []tool.Kind, tags []string) error {
	imported := 0
	for _, t := range reg.Tools {
		if !matchesImport(t, kinds, tags) {
			continue
		}
		for _, name := range extracted {
			if t.Name != name {
				continue
			}
			src := tmpDir + "/" + name

			if fileutil.FileExists(t.Directory) {
				if !ctx.Prompter.Confirm(fmt.Sprintf("%s already exists, overwrite?", t.Directory), false) {
					break
				}
				if err := fileutil.Delete(t.Directory); err != nil {
					return err
				}
				if err := fileutil.Move(src, t.Directory); err != nil {
					return err
				}
				logger.Infof(ctx, "%s replaced", t.Directory)
			} else if err := fileutil.Move(src, t.Directory); err != nil {
				return err
			}
			imported++
			break
		}
	}
	if imported > 0 {
		logger.Info(ctx, "Tools imported properly")
	}
	return nil
}

// matchesImport applies the optional --types and --tags filters. The tag
// filter requires every requested tag on the tool.
func matchesImport(t *tool.Tool, kinds []tool.Kind, tags []string) bool {
	if len(kinds) == 0 && len(tags) == 0 {
		return true
	}
	criteria := query.Criteria{Kinds: kinds, Tags: tags}
	return len(query.Find([]*tool.Tool{t}, criteria)) == 1
}
