// Package provisioning implements the device registration state machine of
// the provisioning SDK.
//
// A Client drives one registration at a time against an injected Transport:
//
//	register -> sending_request -> response_received -> assigned
//	                                  |-> waiting_to_poll -> polling -> response_received
//	                                  |-> failed / error
//
// Transports that establish a connection before registering also implement
// Connector. The client then connects (with retry) from the disconnected
// state and stays connected between registrations.
//
// Example usage:
//
//	client, err := provisioning.New(transport, provisioning.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	client.OnOperationStatus(func(r *provisioning.RegistrationResult) {
//		fmt.Println("status:", r.Status)
//	})
//
//	result, err := client.Register(ctx, provisioning.RegistrationRequest{
//		RegistrationID: "device-1",
//		IDScope:        "0ne00000001",
//	})
//
// # Concurrency
//
// All state transitions run on a single event-loop goroutine owned by the
// client. Transport calls and timers run elsewhere and post their
// completions back to the loop, tagged with the call they belong to; a
// completion for a call that is no longer awaited is dropped. Commands that
// arrive while the client waits on a transport cancel or disconnect are
// deferred and replayed in arrival order once the client settles.
//
// Observer callbacks (OnOperationStatus, OnStateChange) run on a separate
// goroutine, one at a time and in the order the loop produced them. They
// are not ordered against the outcomes delivered to Register, Cancel or
// Disconnect callers. An observer may call Register, Cancel or Disconnect;
// it must not call Close.
//
// # Errors
//
// Errors delivered by Register are classified with package errs:
// errs.ErrInvalidOperation for a register while another is outstanding,
// errs.ErrOperationCancelled after Cancel or Disconnect, errs.ErrTimeout when
// a transport call exceeds Config.RequestTimeout, errs.ErrDeviceRegistrationFailed
// when the service reports a failed registration, and errs.ErrFormat for an
// unrecognised status. Transport errors are delivered unchanged.
package provisioning
