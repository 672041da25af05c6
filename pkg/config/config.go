// Package config loads the provisioning.yaml client configuration and
// applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mash-protocol/provisioning-go/pkg/provisioning"
	"github.com/mash-protocol/provisioning-go/pkg/retry"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the config file looked up in a directory.
const ConfigFileName = "provisioning.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PROV_"

type DeviceConfig struct {
	RegistrationID    string         `yaml:"registration_id"`
	IDScope           string         `yaml:"id_scope"`
	ProvisioningHost  string         `yaml:"provisioning_host"`
	ForceRegistration bool           `yaml:"force_registration,omitempty"`
	Payload           map[string]any `yaml:"payload,omitempty"`
}

type ClientConfig struct {
	PollingInterval string `yaml:"polling_interval,omitempty"`
	RequestTimeout  string `yaml:"request_timeout,omitempty"`
	ConnectTimeout  string `yaml:"connect_timeout,omitempty"`
}

type JitterConfig struct {
	InitialDelay string  `yaml:"initial_delay,omitempty"`
	MinDelay     string  `yaml:"min_delay,omitempty"`
	MaxDelay     string  `yaml:"max_delay,omitempty"`
	JitterUp     float64 `yaml:"jitter_up,omitempty"`
	JitterDown   float64 `yaml:"jitter_down,omitempty"`
}

type RetryConfig struct {
	Disabled            bool          `yaml:"disabled,omitempty"`
	ImmediateFirstRetry *bool         `yaml:"immediate_first_retry,omitempty"`
	Normal              *JitterConfig `yaml:"normal,omitempty"`
	Throttled           *JitterConfig `yaml:"throttled,omitempty"`
}

type StateConfig struct {
	Path string `yaml:"path,omitempty"`

	// SecretEnv names the environment variable holding the sealing secret.
	// The secret itself is never read from the file.
	SecretEnv string `yaml:"secret_env,omitempty"`
}

type LogConfig struct {
	Level     string `yaml:"level,omitempty"`
	EventFile string `yaml:"event_file,omitempty"`
}

type SimulatorConfig struct {
	AssigningPolls  int    `yaml:"assigning_polls,omitempty"`
	Outcome         string `yaml:"outcome,omitempty"`
	AssignedHub     string `yaml:"assigned_hub,omitempty"`
	PollingInterval string `yaml:"polling_interval,omitempty"`
	Latency         string `yaml:"latency,omitempty"`
	ThrottleFirst   int    `yaml:"throttle_first,omitempty"`
}

type FileConfig struct {
	Device    DeviceConfig    `yaml:"device"`
	Client    ClientConfig    `yaml:"client,omitempty"`
	Retry     RetryConfig     `yaml:"retry,omitempty"`
	State     StateConfig     `yaml:"state,omitempty"`
	Log       LogConfig       `yaml:"log,omitempty"`
	Simulator SimulatorConfig `yaml:"simulator,omitempty"`
}

// Load reads ConfigFileName from dir.
func Load(dir string) (*FileConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg *FileConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnv loads .env files into the process environment. Missing files are
// ignored and variables already set win.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ApplyEnv overrides fields from PROV_* variables using lookup, which is
// normally os.LookupEnv.
func (c *FileConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"REGISTRATION_ID", &c.Device.RegistrationID},
		{"ID_SCOPE", &c.Device.IDScope},
		{"PROVISIONING_HOST", &c.Device.ProvisioningHost},
		{"POLLING_INTERVAL", &c.Client.PollingInterval},
		{"REQUEST_TIMEOUT", &c.Client.RequestTimeout},
		{"CONNECT_TIMEOUT", &c.Client.ConnectTimeout},
		{"STATE_PATH", &c.State.Path},
		{"LOG_LEVEL", &c.Log.Level},
		{"EVENT_LOG", &c.Log.EventFile},
	}
	for _, s := range strs {
		if v, ok := lookup(EnvPrefix + s.name); ok {
			*s.dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "FORCE_REGISTRATION"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sFORCE_REGISTRATION: %w", EnvPrefix, err)
		}
		c.Device.ForceRegistration = b
	}
	if v, ok := lookup(EnvPrefix + "RETRY_DISABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sRETRY_DISABLED: %w", EnvPrefix, err)
		}
		c.Retry.Disabled = b
	}
	return nil
}

// Request returns the registration request described by the device section.
func (c *FileConfig) Request() provisioning.RegistrationRequest {
	req := provisioning.RegistrationRequest{
		RegistrationID:    c.Device.RegistrationID,
		IDScope:           c.Device.IDScope,
		ProvisioningHost:  c.Device.ProvisioningHost,
		ForceRegistration: c.Device.ForceRegistration,
	}
	if len(c.Device.Payload) > 0 {
		req.Payload = c.Device.Payload
	}
	return req
}

// ClientConfig returns the provisioning client configuration. Unset values
// keep their defaults.
func (c *FileConfig) ClientConfig() (provisioning.Config, error) {
	cfg := provisioning.DefaultConfig()

	durations := []struct {
		name string
		in   string
		dst  *time.Duration
	}{
		{"client.polling_interval", c.Client.PollingInterval, &cfg.PollingInterval},
		{"client.request_timeout", c.Client.RequestTimeout, &cfg.RequestTimeout},
		{"client.connect_timeout", c.Client.ConnectTimeout, &cfg.ConnectTimeout},
	}
	for _, d := range durations {
		if err := parseDuration(d.name, d.in, d.dst); err != nil {
			return provisioning.Config{}, err
		}
	}

	policy, err := c.RetryPolicy()
	if err != nil {
		return provisioning.Config{}, err
	}
	cfg.ConnectRetryPolicy = policy

	if err := cfg.Validate(); err != nil {
		return provisioning.Config{}, err
	}
	return cfg, nil
}

// RetryPolicy returns the connect retry policy described by the retry section.
func (c *FileConfig) RetryPolicy() (retry.Policy, error) {
	if c.Retry.Disabled {
		return retry.NoRetry{}, nil
	}

	var opts []retry.BackOffOption
	if c.Retry.ImmediateFirstRetry != nil {
		opts = append(opts, retry.WithImmediateFirstRetry(*c.Retry.ImmediateFirstRetry))
	}
	if c.Retry.Normal != nil {
		p, err := c.Retry.Normal.params("retry.normal", retry.DefaultNormalParams)
		if err != nil {
			return nil, err
		}
		opts = append(opts, retry.WithNormalParams(p))
	}
	if c.Retry.Throttled != nil {
		p, err := c.Retry.Throttled.params("retry.throttled", retry.DefaultThrottledParams)
		if err != nil {
			return nil, err
		}
		opts = append(opts, retry.WithThrottledParams(p))
	}
	return retry.NewExponentialBackOffWithJitter(opts...), nil
}

func (j *JitterConfig) params(section string, base retry.JitterParams) (retry.JitterParams, error) {
	p := base
	durations := []struct {
		name string
		in   string
		dst  *time.Duration
	}{
		{section + ".initial_delay", j.InitialDelay, &p.InitialDelay},
		{section + ".min_delay", j.MinDelay, &p.MinDelay},
		{section + ".max_delay", j.MaxDelay, &p.MaxDelay},
	}
	for _, d := range durations {
		if err := parseDuration(d.name, d.in, d.dst); err != nil {
			return retry.JitterParams{}, err
		}
	}
	if j.JitterUp != 0 {
		p.JitterUp = j.JitterUp
	}
	if j.JitterDown != 0 {
		p.JitterDown = j.JitterDown
	}
	if p.MinDelay > p.MaxDelay {
		return retry.JitterParams{}, fmt.Errorf("%s: min_delay %v exceeds max_delay %v", section, p.MinDelay, p.MaxDelay)
	}
	if p.JitterUp < 0 || p.JitterUp > 1 || p.JitterDown < 0 || p.JitterDown > 1 {
		return retry.JitterParams{}, fmt.Errorf("%s: jitter must be within [0, 1]", section)
	}
	return p, nil
}

// Secret returns the sealing secret named by state.secret_env, or nil.
func (c *FileConfig) Secret(lookup func(string) (string, bool)) []byte {
	if c.State.SecretEnv == "" {
		return nil
	}
	if v, ok := lookup(c.State.SecretEnv); ok && v != "" {
		return []byte(v)
	}
	return nil
}

// SimulatorPollingInterval returns simulator.polling_interval, zero when unset.
func (c *FileConfig) SimulatorPollingInterval() (time.Duration, error) {
	var d time.Duration
	err := parseDuration("simulator.polling_interval", c.Simulator.PollingInterval, &d)
	return d, err
}

// SimulatorLatency returns simulator.latency, zero when unset.
func (c *FileConfig) SimulatorLatency() (time.Duration, error) {
	var d time.Duration
	err := parseDuration("simulator.latency", c.Simulator.Latency, &d)
	return d, err
}

func parseDuration(name, in string, dst *time.Duration) error {
	if in == "" {
		return nil
	}
	d, err := time.ParseDuration(in)
	if err != nil {
		return fmt.Errorf("invalid %s in %s: %w", name, ConfigFileName, err)
	}
	*dst = d
	return nil
}
