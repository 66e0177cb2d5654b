package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tman-org/tman/internal/build"
	"github.com/tman-org/tman/internal/cmd"
)

var rootCmd = &cobra.Command{
	Use:   build.Slug,
	Short: "Tman is a personal tool and repository manager",
	Long: `Tman keeps track of the git repositories and local files you care
about: add them once, then install, update, tag, find, export and
import them from a single registry.
`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text or json)")
	rootCmd.PersistentFlags().String("config", "", "configuration directory")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(cmd.CmdAdd())
	rootCmd.AddCommand(cmd.CmdInstall())
	rootCmd.AddCommand(cmd.CmdUpdate())
	rootCmd.AddCommand(cmd.CmdFind())
	rootCmd.AddCommand(cmd.CmdModify())
	rootCmd.AddCommand(cmd.CmdDelete())
	rootCmd.AddCommand(cmd.CmdScan())
	rootCmd.AddCommand(cmd.CmdExport())
	rootCmd.AddCommand(cmd.CmdImport())
	rootCmd.AddCommand(cmd.CmdConfig())
	rootCmd.AddCommand(cmd.CmdVersion())

	build.Version = version
}

var version = "0.0.0"
