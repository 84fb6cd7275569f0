package permessage

import "github.com/kestrel-labs/wsext/header"

// RSVPermission reports which reserved bits a session permits to be set on
// a given frame.
type RSVPermission struct {
	RSV1, RSV2, RSV3 bool
}

// Session is a per-connection, per-extension object created during
// negotiation. It holds whatever state the extension needs (e.g. a
// compression context) and is used until Close, never reinstated
// afterward.
type Session interface {
	// GenerateOffer returns the offer fragments this session wants to
	// advertise (client role). ok is false to advertise nothing at all
	// (the extension is still remembered for a later Activate, per the
	// manager's negotiation contract, it just has no parameters to
	// propose). A session that wants to make several distinct proposals
	// returns them all; the manager serializes each as its own
	// comma-separated fragment.
	GenerateOffer() (offers []header.Params, ok bool)
	// GenerateResponse returns the parameters this session accepts with
	// (server role).
	GenerateResponse() header.Params
	// Activate applies the server's chosen parameters (client role) or,
	// conceptually, is what CreateServerSession already did (server
	// role) — Activate is only ever called on client-side sessions.
	// Returning anything other than true is a rejection.
	Activate(params header.Params) bool

	// ProcessIncomingMessage and ProcessOutgoingMessage transform a
	// message in the pipeline direction implied by their name. An error
	// halts the fold immediately.
	ProcessIncomingMessage(m Message) (Message, error)
	ProcessOutgoingMessage(m Message) (Message, error)

	// ValidFrameRSV reports which reserved bits this session permits to
	// be set on frame. It does not validate that the bits set on frame
	// are semantically correct, only which bits are allowed to be set at
	// all.
	ValidFrameRSV(frame Frame) RSVPermission

	// Close performs idempotent, side-effect-only teardown. It must not
	// panic in normal operation; Manager.Close treats a panic as a
	// best-effort failure to swallow, same as it would swallow a
	// returned error in source languages where Close can fail.
	Close()
}
