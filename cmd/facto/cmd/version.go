package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facto-ocr/facto/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd)
	},
}

func printVersion(cmd *cobra.Command) {
	v, commit, date := version.Info()
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "facto version %s\n", v)
	_, _ = fmt.Fprintf(out, "Commit: %s\n", commit)
	_, _ = fmt.Fprintf(out, "Date: %s\n", date)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
