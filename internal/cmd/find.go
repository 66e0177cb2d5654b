package cmd

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tman-org/tman/internal/logger"
	"github.com/tman-org/tman/internal/query"
	"github.com/tman-org/tman/internal/stringutil"
	"github.com/tman-org/tman/internal/tool"
)

// CmdFind creates the command that lists and filters registered tools.
func CmdFind() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "find [flags]",
			Short: "Find tools",
			Long: `List the registered tools matching the given criteria.

All supplied criteria must match. Without any criterion the whole
registry is listed.
`,
			Args: cobra.NoArgs,
		}, findFlags, runFind,
	)
}

var findFlags = []commandLineFlag{
	{name: "url", shorthand: "u", usage: "find repository by URL"},
	tagsFlag,
	{name: "name", shorthand: "n", slice: true, usage: "find tool by name (repeatable)"},
	{name: "type", shorthand: "p", slice: true, usage: "find tool by type (repeatable)"},
	{name: "last-update-date", shorthand: "d", usage: "last update date greater than dd-mm-yyyy"},
	{name: "flexible", shorthand: "f", boolean: true, usage: "match names as case-insensitive substrings"},
	allFlag,
	logFlag,
}

func runFind(ctx *Context, _ []string) error {
	flags := ctx.Command.Flags()
	url, _ := flags.GetString("url")
	tags, _ := flags.GetString("tags")
	names, _ := flags.GetStringArray("name")
	types, _ := flags.GetStringArray("type")
	updateDate, _ := flags.GetString("last-update-date")
	flexible, _ := flags.GetBool("flexible")
	all, _ := flags.GetBool("all")

	criteria := query.Criteria{
		URL:          url,
		Tags:         stringutil.SanitizeTags(tags),
		Names:        stringutil.SanitizeList(names),
		Kinds:        query.ParseKinds(strings.Join(types, ",")),
		FlexibleName: flexible,
	}
	if updateDate != "" {
		epoch, err := stringutil.ParseDate(updateDate)
		if err != nil {
			return err
		}
		criteria.UpdatedAfter = &epoch
	}

	if criteria.IsZero() {
		all = true
	}

	_, reg, err := ctx.OpenRegistry()
	if err != nil {
		return err
	}

	tools := reg.Tools
	if !all {
		tools = query.Find(reg.Tools, criteria)
	}

	if len(tools) == 0 {
		logger.Write(ctx, "Nothing found")
		return nil
	}

	logger.Write(ctx, renderToolTable(tools))
	if !all {
		logger.Infof(ctx, "Found %d/%d tools", len(tools), len(reg.Tools))
	} else {
		logger.Infof(ctx, "Tot tools: %d", len(tools))
	}
	return nil
}

var toolHeader = table.Row{"#", "Name", "Type", "Directory", "Tags", "Added", "Installed", "Last Update"}

func renderToolTable(tools []*tool.Tool) string {
	w := table.NewWriter()
	w.AppendHeader(toolHeader)
	for i, t := range tools {
		w.AppendRow(table.Row{
			i + 1,
			t.Name,
			t.Kind,
			t.Directory,
			strings.Join(t.Tags, ","),
			stringutil.FormatEpoch(t.AddDate),
			stringutil.FormatEpoch(t.InstallDate),
			stringutil.FormatEpoch(t.LastUpdateDate),
		})
	}
	return w.Render()
}
