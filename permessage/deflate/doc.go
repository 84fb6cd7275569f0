// Package deflate is a reference permessage.Extension implementing
// RFC 7692-shaped permessage-deflate negotiation over the standard
// library's compress/flate codec. It exists to exercise the header
// grammar and negotiation engine against a real, non-trivial extension in
// tests and the demo server; nothing in package permessage depends on it.
package deflate
