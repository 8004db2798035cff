package cmd

import (
	"os"

	"github.com/dreamerjackson/ducrawler/cmd/run"
	"github.com/dreamerjackson/ducrawler/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func Execute() {
	var rootCmd = &cobra.Command{Use: "ducrawler"}
	rootCmd.AddCommand(run.Cmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
