package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set by Execute from goreleaser ldflags.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(ui.Out, "codetime %s (commit %s, built %s)\n", buildVersion, buildCommit, buildDate)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
