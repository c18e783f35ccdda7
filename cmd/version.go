package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Actual version can be specified in build command:
// go build -ldflags "-X github.com/spigell/job-qualifier/cmd.version=v1.0.0"
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the build toolchain",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s (%s)\n", app, version, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
