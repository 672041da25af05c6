package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mash-protocol/provisioning-go/internal/simulator"
	"github.com/mash-protocol/provisioning-go/pkg/config"
	"github.com/mash-protocol/provisioning-go/pkg/persistence"
)

// DefaultStatePath is used when state.path is not configured.
const DefaultStatePath = "provisioning-state.json"

// loadConfig loads .env, the config file and PROV_* overrides. A missing
// default config file is not an error; an explicitly named one is.
func loadConfig(cmd *cobra.Command) (*config.FileConfig, error) {
	config.LoadEnv()

	var (
		cfg *config.FileConfig
		err error
	)
	if path := getConfigFlag(cmd); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
		if errors.Is(err, config.ErrConfigNotFound) {
			cfg, err = &config.FileConfig{}, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the operational logger from log.level, raised to debug
// by --verbose.
func newLogger(w io.Writer, cfg *config.FileConfig, verbose bool) (*slog.Logger, error) {
	level := slog.LevelWarn
	if cfg.Log.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Log.Level, err)
		}
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// openStore opens the state store, sealed when a secret is configured.
func openStore(cfg *config.FileConfig, registrationID string) (*persistence.Store, error) {
	path := cfg.State.Path
	if path == "" {
		path = DefaultStatePath
	}

	secret := cfg.Secret(os.LookupEnv)
	if secret == nil {
		return persistence.NewStore(path), nil
	}
	sealer, err := persistence.NewSealer(secret, []byte(registrationID))
	if err != nil {
		return nil, err
	}
	return persistence.NewStore(path, persistence.WithSealer(sealer)), nil
}

// simulatorScript builds the simulator script from the simulator section.
// Zero values keep the defaults.
func simulatorScript(cfg *config.FileConfig) (simulator.Script, error) {
	script := simulator.DefaultScript()
	sc := cfg.Simulator

	outcome, err := simulator.ParseOutcome(sc.Outcome)
	if err != nil {
		return simulator.Script{}, fmt.Errorf("simulator.outcome: %w", err)
	}
	script.Outcome = outcome

	if sc.AssigningPolls > 0 {
		script.AssigningPolls = sc.AssigningPolls
	}
	if sc.AssignedHub != "" {
		script.AssignedHub = sc.AssignedHub
	}
	script.ThrottleFirst = sc.ThrottleFirst

	if script.PollingInterval, err = cfg.SimulatorPollingInterval(); err != nil {
		return simulator.Script{}, err
	}
	if script.Latency, err = cfg.SimulatorLatency(); err != nil {
		return simulator.Script{}, err
	}
	return script, nil
}
