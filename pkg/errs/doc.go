// Package errs defines the error taxonomy shared by the retry engine and the
// registration state machine.
//
// Every error that crosses the public surface either carries a Kind (as an
// *Error) or is a transport error passed through verbatim. Retry decisions are
// made on the Kind, never on type names or message text:
//
//	if errs.KindOf(err) == errs.KindThrottling {
//	    // back off harder
//	}
//
// Sentinels such as ErrTimeout match any *Error of the same kind through
// errors.Is.
package errs
