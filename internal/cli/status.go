package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusFlags struct {
	statePath string
	asJSON    bool
}

func resetStatusFlags() {
	statusFlags.statePath = ""
	statusFlags.asJSON = false
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored registration state",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored registration state",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	statusCmd.Flags().StringVar(&statusFlags.statePath, "state", "", "State file (overrides state.path)")
	statusCmd.Flags().BoolVar(&statusFlags.asJSON, "json", false, "Print the stored record as JSON")
	resetCmd.Flags().StringVar(&statusFlags.statePath, "state", "", "State file (overrides state.path)")
	rootCmd.AddCommand(statusCmd, resetCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if statusFlags.statePath != "" {
		cfg.State.Path = statusFlags.statePath
	}

	store, err := openStore(cfg, cfg.Device.RegistrationID)
	if err != nil {
		return err
	}
	rec, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}
	if rec == nil {
		fmt.Fprintf(out, "No registration stored in %s\n", store.Path())
		return nil
	}

	if statusFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Fprintf(out, "Registration: %s\n", rec.RegistrationID)
	if rec.IDScope != "" {
		fmt.Fprintf(out, "Scope:        %s\n", rec.IDScope)
	}
	fmt.Fprintf(out, "Saved:        %s\n", rec.SavedAt.Format("2006-01-02 15:04:05 MST"))
	if rec.Result != nil {
		printResult(out, rec.Result)
	}
	if rec.LastError != "" {
		fmt.Fprintf(out, "LastError:   %s\n", rec.LastError)
	}
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if statusFlags.statePath != "" {
		cfg.State.Path = statusFlags.statePath
	}

	store, err := openStore(cfg, cfg.Device.RegistrationID)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", store.Path())
	return nil
}
