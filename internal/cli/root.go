// Package cli implements the prov-device command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prov-device",
	Short: "Device provisioning client",
	Long: `prov-device registers a device with a provisioning service and keeps
the resulting assignment on disk.

Configuration is read from provisioning.yaml in the working directory (or
--config), then overridden by PROV_* environment variables. A .env file in
the working directory is loaded first.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Could not connect to the provisioning service
  12 - Registration failed or was rejected
  13 - Registration timed out or was cancelled`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default ./provisioning.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

// getVerboseFlag safely retrieves the verbose flag value.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}

func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return ""
	}
	return path
}
