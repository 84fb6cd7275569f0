package permessage

import "fmt"

// RegistrationError reports a programming mistake made by the caller when
// registering an Extension: a malformed descriptor or a duplicate name. It
// is distinct from ParseError and ExtensionError because it does not
// depend on anything a remote peer sent — it is caught before any
// negotiation happens and should generally be treated as non-recoverable.
type RegistrationError struct {
	Field  string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("permessage: invalid extension registration (%s): %s", e.Field, e.Reason)
}

// ExtensionError reports a negotiation, reservation, or pipeline failure:
// an unknown extension in an activation header, an RSV conflict, rejected
// activation parameters, or a session's process method returning an
// error. Pipeline failures are wrapped exactly once; Unwrap exposes the
// original cause for errors.Is/errors.As.
type ExtensionError struct {
	Reason string
	Err    error
}

func (e *ExtensionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("permessage: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("permessage: %s", e.Reason)
}

func (e *ExtensionError) Unwrap() error { return e.Err }

func newExtensionError(reason string) *ExtensionError {
	return &ExtensionError{Reason: reason}
}

func wrapExtensionError(reason string, err error) *ExtensionError {
	return &ExtensionError{Reason: reason, Err: err}
}
