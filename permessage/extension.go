package permessage

import "github.com/kestrel-labs/wsext/header"

// ExtensionType discriminates the kinds of extension the manager knows how
// to negotiate. Only "permessage" is currently recognized.
type ExtensionType string

// TypePerMessage is the only ExtensionType a Registry will accept.
const TypePerMessage ExtensionType = "permessage"

// Extension is an immutable, caller-supplied descriptor of a negotiable,
// named payload transformer. Extensions are added to a Manager before any
// offer or response is produced (see Manager.Add) and are never mutated by
// the manager itself.
type Extension interface {
	// Name is the token used to identify this extension on the wire. It
	// must be non-empty.
	Name() string
	// Type must be TypePerMessage; any other value is a registration
	// error.
	Type() ExtensionType
	// RSV1, RSV2, RSV3 report which reserved frame bits an active session
	// of this extension may set. At most one active extension may claim
	// any given bit.
	RSV1() bool
	RSV2() bool
	RSV3() bool

	// CreateClientSession builds a per-connection session for the offer
	// side. ok is false when this extension has nothing to offer on this
	// connection (e.g. it is disabled by local configuration).
	CreateClientSession() (session Session, ok bool)
	// CreateServerSession builds a per-connection session for the
	// response side from the set of client offers naming this extension,
	// in the order they appeared. ok is false to decline.
	CreateServerSession(offers []header.Params) (session Session, ok bool)
}
