package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/provisioning-go/pkg/provisioning"
	"github.com/mash-protocol/provisioning-go/pkg/retry"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))
	return dir
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_AllFields(t *testing.T) {
	dir := writeConfig(t, `device:
  registration_id: sensor-01
  id_scope: 0ne00000001
  provisioning_host: global.example.net
  force_registration: true
  payload:
    model: th-100

client:
  polling_interval: 5s
  request_timeout: 20s
  connect_timeout: 1m

retry:
  immediate_first_retry: false
  normal:
    min_delay: 200ms
    max_delay: 5s

state:
  path: /var/lib/prov/state.json
  secret_env: PROV_SECRET

log:
  level: debug
  event_file: /tmp/prov.log

simulator:
  assigning_polls: 3
  outcome: assigned
  assigned_hub: hub-1.example.net
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "sensor-01", cfg.Device.RegistrationID)
	assert.Equal(t, "0ne00000001", cfg.Device.IDScope)
	assert.Equal(t, "global.example.net", cfg.Device.ProvisioningHost)
	assert.True(t, cfg.Device.ForceRegistration)
	assert.Equal(t, "th-100", cfg.Device.Payload["model"])
	assert.Equal(t, "5s", cfg.Client.PollingInterval)
	require.NotNil(t, cfg.Retry.ImmediateFirstRetry)
	assert.False(t, *cfg.Retry.ImmediateFirstRetry)
	require.NotNil(t, cfg.Retry.Normal)
	assert.Equal(t, "200ms", cfg.Retry.Normal.MinDelay)
	assert.Nil(t, cfg.Retry.Throttled)
	assert.Equal(t, "PROV_SECRET", cfg.State.SecretEnv)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Simulator.AssigningPolls)
	assert.Equal(t, "hub-1.example.net", cfg.Simulator.AssignedHub)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "{{invalid")

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	in := &FileConfig{Device: DeviceConfig{RegistrationID: "dev", IDScope: "scope"}}
	in.Client.RequestTimeout = "3s"

	require.NoError(t, Save(path, in))

	out, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", out.Device.RegistrationID)
	assert.Equal(t, "3s", out.Client.RequestTimeout)
}

func TestRequest(t *testing.T) {
	cfg := &FileConfig{Device: DeviceConfig{
		RegistrationID:   "sensor-01",
		IDScope:          "scope",
		ProvisioningHost: "host",
	}}

	req := cfg.Request()
	require.NoError(t, req.Validate())
	assert.Equal(t, "sensor-01", req.RegistrationID)
	assert.Nil(t, req.Payload)
}

func TestClientConfig_Defaults(t *testing.T) {
	cfg := &FileConfig{}

	cc, err := cfg.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, provisioning.DefaultPollingInterval, cc.PollingInterval)
	assert.Equal(t, provisioning.DefaultRequestTimeout, cc.RequestTimeout)
	assert.Equal(t, provisioning.DefaultConnectTimeout, cc.ConnectTimeout)
	assert.IsType(t, &retry.ExponentialBackOffWithJitter{}, cc.ConnectRetryPolicy)
}

func TestClientConfig_Overrides(t *testing.T) {
	cfg := &FileConfig{Client: ClientConfig{
		PollingInterval: "250ms",
		RequestTimeout:  "2s",
		ConnectTimeout:  "0s",
	}}
	cfg.Retry.Disabled = true

	cc, err := cfg.ClientConfig()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cc.PollingInterval)
	assert.Equal(t, 2*time.Second, cc.RequestTimeout)
	assert.Equal(t, time.Duration(0), cc.ConnectTimeout)
	assert.Equal(t, retry.NoRetry{}, cc.ConnectRetryPolicy)
}

func TestClientConfig_Invalid(t *testing.T) {
	t.Run("BadDuration", func(t *testing.T) {
		cfg := &FileConfig{Client: ClientConfig{RequestTimeout: "soon"}}
		_, err := cfg.ClientConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "client.request_timeout")
	})

	t.Run("ZeroPolling", func(t *testing.T) {
		cfg := &FileConfig{Client: ClientConfig{PollingInterval: "0s"}}
		_, err := cfg.ClientConfig()
		assert.ErrorIs(t, err, provisioning.ErrInvalidConfig)
	})
}

func TestRetryPolicy_Params(t *testing.T) {
	immediate := false
	cfg := &FileConfig{Retry: RetryConfig{
		ImmediateFirstRetry: &immediate,
		Normal: &JitterConfig{
			InitialDelay: "1s",
			MinDelay:     "2s",
			MaxDelay:     "5s",
		},
	}}

	p, err := cfg.RetryPolicy()
	require.NoError(t, err)

	d := p.NextRetryTimeout(1, false)
	assert.GreaterOrEqual(t, d, 2*time.Second)
	assert.LessOrEqual(t, d, 5*time.Second)
	assert.NotZero(t, p.NextRetryTimeout(0, false))
}

func TestRetryPolicy_InvalidParams(t *testing.T) {
	t.Run("MinAboveMax", func(t *testing.T) {
		cfg := &FileConfig{Retry: RetryConfig{Throttled: &JitterConfig{MinDelay: "2m", MaxDelay: "1m"}}}
		_, err := cfg.RetryPolicy()
		assert.Error(t, err)
	})

	t.Run("JitterOutOfRange", func(t *testing.T) {
		cfg := &FileConfig{Retry: RetryConfig{Normal: &JitterConfig{JitterUp: 1.5}}}
		_, err := cfg.RetryPolicy()
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	cfg := &FileConfig{Device: DeviceConfig{RegistrationID: "from-file", IDScope: "scope"}}

	err := cfg.ApplyEnv(envMap(map[string]string{
		"PROV_REGISTRATION_ID":    "from-env",
		"PROV_FORCE_REGISTRATION": "true",
		"PROV_REQUEST_TIMEOUT":    "9s",
		"PROV_RETRY_DISABLED":     "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Device.RegistrationID)
	assert.Equal(t, "scope", cfg.Device.IDScope)
	assert.True(t, cfg.Device.ForceRegistration)
	assert.Equal(t, "9s", cfg.Client.RequestTimeout)
	assert.True(t, cfg.Retry.Disabled)
}

func TestApplyEnv_InvalidBool(t *testing.T) {
	cfg := &FileConfig{}
	err := cfg.ApplyEnv(envMap(map[string]string{"PROV_FORCE_REGISTRATION": "maybe"}))
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PROV_TEST_LOADENV_ID=abc\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("PROV_TEST_LOADENV_ID") })

	LoadEnv(envFile, filepath.Join(dir, "missing.env"))

	assert.Equal(t, "abc", os.Getenv("PROV_TEST_LOADENV_ID"))
}

func TestSecret(t *testing.T) {
	cfg := &FileConfig{State: StateConfig{SecretEnv: "PROV_SECRET"}}

	assert.Equal(t, []byte("hunter2"), cfg.Secret(envMap(map[string]string{"PROV_SECRET": "hunter2"})))
	assert.Nil(t, cfg.Secret(envMap(nil)))
	assert.Nil(t, (&FileConfig{}).Secret(envMap(map[string]string{"PROV_SECRET": "x"})))
}
