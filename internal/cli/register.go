package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/mash-protocol/provisioning-go/internal/simulator"
	"github.com/mash-protocol/provisioning-go/pkg/config"
	"github.com/mash-protocol/provisioning-go/pkg/errs"
	"github.com/mash-protocol/provisioning-go/pkg/log"
	"github.com/mash-protocol/provisioning-go/pkg/persistence"
	"github.com/mash-protocol/provisioning-go/pkg/provisioning"
)

var registerFlags struct {
	registrationID string
	idScope        string
	host           string
	force          bool
	eventLog       string
	statePath      string
	timeout        time.Duration
	outcome        string
	assigningPolls int
}

func resetRegisterFlags() {
	registerFlags.registrationID = ""
	registerFlags.idScope = ""
	registerFlags.host = ""
	registerFlags.force = false
	registerFlags.eventLog = ""
	registerFlags.statePath = ""
	registerFlags.timeout = 0
	registerFlags.outcome = ""
	registerFlags.assigningPolls = 0
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the device with the provisioning service",
	Long: `Register the device and persist the assignment.

A device that already holds an assignment for the same registration id is
not registered again unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	f := registerCmd.Flags()
	f.StringVar(&registerFlags.registrationID, "registration-id", "", "Registration id (overrides device.registration_id)")
	f.StringVar(&registerFlags.idScope, "id-scope", "", "ID scope (overrides device.id_scope)")
	f.StringVar(&registerFlags.host, "host", "", "Provisioning host (overrides device.provisioning_host)")
	f.BoolVarP(&registerFlags.force, "force", "f", false, "Register even if an assignment is stored")
	f.StringVar(&registerFlags.eventLog, "event-log", "", "Append registration events to this file")
	f.StringVar(&registerFlags.statePath, "state", "", "State file (overrides state.path)")
	f.DurationVar(&registerFlags.timeout, "timeout", 0, "Give up after this long (0 = no limit)")
	f.StringVar(&registerFlags.outcome, "outcome", "", "Simulated outcome: assigned, failed, disabled, rejected")
	f.IntVar(&registerFlags.assigningPolls, "assigning-polls", 0, "Simulated polls before the outcome")
	rootCmd.AddCommand(registerCmd)
}

func applyRegisterFlags(cfg *config.FileConfig) {
	if registerFlags.registrationID != "" {
		cfg.Device.RegistrationID = registerFlags.registrationID
	}
	if registerFlags.idScope != "" {
		cfg.Device.IDScope = registerFlags.idScope
	}
	if registerFlags.host != "" {
		cfg.Device.ProvisioningHost = registerFlags.host
	}
	if registerFlags.force {
		cfg.Device.ForceRegistration = true
	}
	if registerFlags.eventLog != "" {
		cfg.Log.EventFile = registerFlags.eventLog
	}
	if registerFlags.statePath != "" {
		cfg.State.Path = registerFlags.statePath
	}
	if registerFlags.outcome != "" {
		cfg.Simulator.Outcome = registerFlags.outcome
	}
	if registerFlags.assigningPolls > 0 {
		cfg.Simulator.AssigningPolls = registerFlags.assigningPolls
	}
}

func runRegister(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRegisterFlags(cfg)

	req := cfg.Request()
	if err := req.Validate(); err != nil {
		return err
	}
	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg, verbose)
	if err != nil {
		return fmt.Errorf("%w: %v", provisioning.ErrInvalidConfig, err)
	}
	clientCfg.Logger = logger

	store, err := openStore(cfg, req.RegistrationID)
	if err != nil {
		return err
	}
	if !req.ForceRegistration {
		rec, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to read state: %w", err)
		}
		if rec.Assigned() && rec.RegistrationID == req.RegistrationID {
			fmt.Fprintf(out, "Already assigned to %s (use --force to register again)\n", rec.Result.AssignedHub())
			return nil
		}
	}

	eventLogger, closeEvents, err := eventLoggers(cfg, verbose, logger)
	if err != nil {
		return err
	}
	defer closeEvents()
	clientCfg.EventLogger = eventLogger

	script, err := simulatorScript(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", provisioning.ErrInvalidConfig, err)
	}
	service := simulator.New(script, simulator.WithLogger(logger))

	client, err := provisioning.New(service, clientCfg)
	if err != nil {
		return err
	}
	defer client.Close()

	client.OnOperationStatus(func(r *provisioning.RegistrationResult) {
		fmt.Fprintf(cmd.ErrOrStderr(), "status: %s\n", r.Status)
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if registerFlags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, registerFlags.timeout)
		defer cancel()
	}

	result, regErr := client.Register(ctx, req)
	if regErr != nil {
		result = failedResult(regErr)
	}

	if err := store.Save(persistence.NewRecord(req, result, regErr)); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to save state: %v\n", err)
	}

	if regErr != nil {
		return fmt.Errorf("registration failed: %w", regErr)
	}
	printResult(out, result)
	return nil
}

// failedResult returns the service result attached to a registration error.
func failedResult(err error) *provisioning.RegistrationResult {
	var e *errs.Error
	if errors.As(err, &e) {
		if r, ok := e.Result.(*provisioning.RegistrationResult); ok {
			return r
		}
	}
	return nil
}

// eventLoggers returns the event sink for the client and a function that
// closes it. Events go to the event file and, when verbose, to logger.
func eventLoggers(cfg *config.FileConfig, verbose bool, logger *slog.Logger) (log.Logger, func(), error) {
	var sinks []log.Logger
	closeFn := func() {}

	if cfg.Log.EventFile != "" {
		fl, err := log.NewFileLogger(cfg.Log.EventFile)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fl)
		closeFn = func() { fl.Close() }
	}
	if verbose {
		sinks = append(sinks, log.NewSlogAdapter(logger))
	}

	if len(sinks) == 0 {
		return log.NoopLogger{}, closeFn, nil
	}
	return log.NewMultiLogger(sinks...), closeFn, nil
}

func printResult(w io.Writer, r *provisioning.RegistrationResult) {
	fmt.Fprintf(w, "Status:      %s\n", r.Status)
	fmt.Fprintf(w, "Operation:   %s\n", r.OperationID)
	if hub := r.AssignedHub(); hub != "" {
		fmt.Fprintf(w, "AssignedHub: %s\n", hub)
	}
	if id := r.DeviceID(); id != "" {
		fmt.Fprintf(w, "DeviceID:    %s\n", id)
	}
}
