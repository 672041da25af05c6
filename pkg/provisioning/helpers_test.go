package provisioning_test

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mash-protocol/provisioning-go/pkg/log"
	"github.com/mash-protocol/provisioning-go/pkg/provisioning"
	"github.com/mash-protocol/provisioning-go/pkg/provisioning/mocks"
)

// connTransport is a transport with a connect step.
type connTransport struct {
	*mocks.MockTransport
	*mocks.MockConnector
}

func newConnTransport(t *testing.T) (*connTransport, *mocks.MockTransport, *mocks.MockConnector) {
	tr := mocks.NewMockTransport(t)
	cn := mocks.NewMockConnector(t)
	return &connTransport{MockTransport: tr, MockConnector: cn}, tr, cn
}

// logBuffer is a goroutine-safe sink for debug output.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(b.buf.String(), s)
}

// recorder captures observer callbacks and events.
type recorder struct {
	mu       sync.Mutex
	states   []provisioning.State
	statuses []provisioning.Status
	events   []log.Event
}

func (r *recorder) onState(_, s provisioning.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) onStatus(res *provisioning.RegistrationResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, res.Status)
}

func (r *recorder) Log(ev log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) States() []provisioning.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]provisioning.State(nil), r.states...)
}

func (r *recorder) Statuses() []provisioning.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]provisioning.Status(nil), r.statuses...)
}

func (r *recorder) Events() []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]log.Event(nil), r.events...)
}

type harness struct {
	client *provisioning.Client
	rec    *recorder
	logs   *logBuffer
}

func testConfig() provisioning.Config {
	cfg := provisioning.DefaultConfig()
	cfg.PollingInterval = 10 * time.Millisecond
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func newHarness(t *testing.T, tr provisioning.Transport, mutate ...func(*provisioning.Config)) *harness {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}

	h := &harness{rec: &recorder{}, logs: &logBuffer{}}
	cfg.Logger = slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg.EventLogger = h.rec

	client, err := provisioning.New(tr, cfg)
	require.NoError(t, err)
	client.OnStateChange(h.rec.onState)
	client.OnOperationStatus(h.rec.onStatus)
	t.Cleanup(func() { _ = client.Close() })

	h.client = client
	return h
}

func (h *harness) waitState(t *testing.T, want provisioning.State) {
	t.Helper()
	require.Eventually(t, func() bool { return h.client.State() == want },
		2*time.Second, time.Millisecond, "state never reached %v (now %v)", want, h.client.State())
}

// waitStates waits until the observed state changes equal want.
// Observers run off the event loop, so they may trail the caller's outcome.
func (h *harness) waitStates(t *testing.T, want ...provisioning.State) {
	t.Helper()
	require.Eventually(t, func() bool { return slices.Equal(h.rec.States(), want) },
		2*time.Second, time.Millisecond, "observed states %v, want %v", h.rec.States(), want)
}

// waitStatuses waits until the observed statuses equal want.
func (h *harness) waitStatuses(t *testing.T, want ...provisioning.Status) {
	t.Helper()
	require.Eventually(t, func() bool { return slices.Equal(h.rec.Statuses(), want) },
		2*time.Second, time.Millisecond, "observed statuses %v, want %v", h.rec.Statuses(), want)
}

func (h *harness) waitLog(t *testing.T, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return h.logs.Contains(msg) },
		2*time.Second, time.Millisecond, "log %q never written", msg)
}

var testRequest = provisioning.RegistrationRequest{
	RegistrationID: "dev-1",
	IDScope:        "0ne00000001",
}

func assignedResponse(opID string) *provisioning.Response {
	return &provisioning.Response{
		Result: &provisioning.RegistrationResult{
			OperationID: opID,
			Status:      "assigned",
			RegistrationState: &provisioning.RegistrationState{
				RegistrationID: "dev-1",
				AssignedHub:    "hub.example.net",
				DeviceID:       "dev-1",
				Status:         "assigned",
			},
		},
		Raw: []byte(`{"status":"assigned"}`),
	}
}

// statusResponse carries an explicit service polling interval.
func statusResponse(opID string, status provisioning.Status, interval time.Duration) *provisioning.Response {
	return &provisioning.Response{
		Result:          &provisioning.RegistrationResult{OperationID: opID, Status: status},
		PollingInterval: &interval,
	}
}

// blockUntil returns a transport call that signals entered and then blocks
// until release is closed or the call's context ends.
func blockUntil(entered chan<- struct{}, release <-chan struct{}, resp *provisioning.Response) func(ctx context.Context, _ provisioning.RegistrationRequest) (*provisioning.Response, error) {
	return func(ctx context.Context, _ provisioning.RegistrationRequest) (*provisioning.Response, error) {
		close(entered)
		select {
		case <-release:
			return resp, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

type registerOutcome struct {
	result *provisioning.RegistrationResult
	err    error
}

func registerAsync(c *provisioning.Client, ctx context.Context) <-chan registerOutcome {
	ch := make(chan registerOutcome, 1)
	c.RegisterAsync(ctx, testRequest, func(r *provisioning.RegistrationResult, err error) {
		ch <- registerOutcome{r, err}
	})
	return ch
}

func awaitOutcome(t *testing.T, ch <-chan registerOutcome) registerOutcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(3 * time.Second):
		t.Fatal("register did not complete")
		return registerOutcome{}
	}
}
