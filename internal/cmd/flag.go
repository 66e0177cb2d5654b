package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
	boolean, slice, required             bool
}

var (
	logFlag = commandLineFlag{
		name:      "log",
		shorthand: "l",
		usage:     "log to file instead of printing to stdout",
	}
	assumeYesFlag = commandLineFlag{
		name:      "assume-yes",
		shorthand: "y",
		boolean:   true,
		usage:     "assume yes as the answer to every prompt",
	}
	tagsFlag = commandLineFlag{
		name:      "tags",
		shorthand: "t",
		usage:     "comma-separated list of tags",
	}
	nameFlag = commandLineFlag{
		name:      "name",
		shorthand: "n",
		usage:     "tool name",
	}
	repoURLFlag = commandLineFlag{
		name:      "repo-url",
		shorthand: "u",
		usage:     "repository URL",
	}
	allFlag = commandLineFlag{
		name:      "all",
		shorthand: "a",
		boolean:   true,
		usage:     "apply to every registered tool",
	}
	typesFlag = commandLineFlag{
		name:  "types",
		usage: "comma-separated list of tool types (git, local)",
	}
)

func initFlags(cmd *cobra.Command, flags ...commandLineFlag) {
	for _, flag := range flags {
		switch {
		case flag.boolean:
			cmd.Flags().BoolP(flag.name, flag.shorthand, flag.defaultValue == "true", flag.usage)
		case flag.slice:
			cmd.Flags().StringArrayP(flag.name, flag.shorthand, nil, flag.usage)
		default:
			cmd.Flags().StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
		}
		if flag.required {
			if err := cmd.MarkFlagRequired(flag.name); err != nil {
				fmt.Printf("failed to mark flag %s as required: %v\n", flag.name, err)
			}
		}
	}
}

func bindFlags(cmd *cobra.Command, flags ...commandLineFlag) {
	for _, flag := range flags {
		_ = viper.BindPFlag(flag.name, cmd.Flags().Lookup(flag.name))
	}
}
