package deflate

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// Config carries the negotiable permessage-deflate parameters (RFC 7692
// §7.1), the tunables a client offers and a server may echo back.
type Config struct {
	// ServerNoContextTakeover, if true, tells the server not to reuse its
	// LZ77 sliding window across messages.
	ServerNoContextTakeover bool `json:"server_no_context_takeover,omitempty" jsonschema:"description=Disable server-side context takeover between messages"`
	// ClientNoContextTakeover mirrors ServerNoContextTakeover for the
	// client's compressor.
	ClientNoContextTakeover bool `json:"client_no_context_takeover,omitempty" jsonschema:"description=Disable client-side context takeover between messages"`
	// ServerMaxWindowBits bounds the server's LZ77 window size, in
	// [8,15]. Zero means "not specified" (RFC default of 15).
	ServerMaxWindowBits int `json:"server_max_window_bits,omitempty" jsonschema:"minimum=8,maximum=15,description=Server LZ77 window size in bits"`
	// ClientMaxWindowBits mirrors ServerMaxWindowBits for the client.
	ClientMaxWindowBits int `json:"client_max_window_bits,omitempty" jsonschema:"minimum=8,maximum=15,description=Client LZ77 window size in bits"`
}

// Validate checks the numeric bounds RFC 7692 places on the window-bits
// parameters. A zero value is always valid (it means "unspecified"); a
// non-zero value outside [8,15] is not.
func (c Config) Validate() error {
	if c.ServerMaxWindowBits != 0 && (c.ServerMaxWindowBits < 8 || c.ServerMaxWindowBits > 15) {
		return fmt.Errorf("deflate: server_max_window_bits must be in [8,15], got %d", c.ServerMaxWindowBits)
	}
	if c.ClientMaxWindowBits != 0 && (c.ClientMaxWindowBits < 8 || c.ClientMaxWindowBits > 15) {
		return fmt.Errorf("deflate: client_max_window_bits must be in [8,15], got %d", c.ClientMaxWindowBits)
	}
	return nil
}

// Schema reflects Config into a JSON Schema, for introspection tooling
// (e.g. the demo server's /debug/manager endpoint) that wants to describe
// what this extension's parameters look like without hand-maintaining a
// second description of them.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	return r.Reflect(new(Config))
}
