package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mash-protocol/provisioning-go/pkg/version"
)

// Build-time variables set via ldflags.
var (
	commit = "unknown"
	date   = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersionInfo(cmd)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersionInfo(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "prov-device %s (%s, %s) %s/%s\n", version.SDK, commit, date, runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "API version: %s\n", version.CurrentAPIVersion())
	fmt.Fprintf(out, "User agent:  %s\n", version.UserAgent(""))
}
