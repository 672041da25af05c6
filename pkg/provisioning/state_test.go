package provisioning

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "DISCONNECTED"},
		{StateIdle, "IDLE"},
		{StateConnecting, "CONNECTING"},
		{StateConnected, "CONNECTED"},
		{StateSendingRequest, "SENDING_REQUEST"},
		{StateResponseReceived, "RESPONSE_RECEIVED"},
		{StateResponseComplete, "RESPONSE_COMPLETE"},
		{StateResponseError, "RESPONSE_ERROR"},
		{StateWaitingToPoll, "WAITING_TO_POLL"},
		{StatePolling, "POLLING"},
		{StateCancelling, "CANCELLING"},
		{StateDisconnecting, "DISCONNECTING"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStateBusy(t *testing.T) {
	busy := map[State]bool{
		StateConnecting:     true,
		StateSendingRequest: true,
		StateWaitingToPoll:  true,
		StatePolling:        true,
	}
	for s := StateDisconnected; s <= StateDisconnecting; s++ {
		if s.busy() != busy[s] {
			t.Errorf("%v.busy() = %v, want %v", s, s.busy(), busy[s])
		}
	}
}

func TestEventKindCommand(t *testing.T) {
	for _, k := range []eventKind{evRegister, evCancel, evDisconnect} {
		if !k.command() {
			t.Errorf("%v should be a command", k)
		}
	}
	for _, k := range []eventKind{evAbort, evConnected, evResponse, evRequestTimeout, evPollTimer, evHookDone} {
		if k.command() {
			t.Errorf("%v should not be a command", k)
		}
	}
}
