// Package permessage implements a protocol-agnostic manager for
// negotiating, ordering, and pipelining per-message extensions on a
// framed bidirectional connection — the kind of extension negotiation a
// WebSocket-shaped protocol performs during its handshake (RFC 6455 §9,
// RFC 7692's permessage-deflate being the canonical example).
//
// The manager knows how extensions are negotiated, ordered, and
// pipelined; it never interprets message contents and delegates all
// payload transformation to the Extension/Session pair the caller
// supplies. It performs no I/O and is single-threaded: a Manager is owned
// exclusively by the connection that created it.
//
// Typical client-side use:
//
//	m := permessage.New()
//	m.Add(myExtension)
//	offerHeader := m.GenerateOffer()
//	// ... send offerHeader, receive responseHeader from the peer ...
//	if err := m.Activate(responseHeader); err != nil {
//	    // reject the handshake
//	}
//
// Typical server-side use:
//
//	m := permessage.New()
//	m.Add(myExtension)
//	responseHeader, err := m.GenerateResponse(offerHeader)
//
// Once negotiated, m.ProcessOutgoingMessage / m.ProcessIncomingMessage run
// the active pipeline, and m.ValidFrameRSV checks whether a frame's
// reserved bits are permitted by the negotiated extensions.
package permessage
