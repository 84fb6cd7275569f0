package permessage

import (
	"fmt"
	"log/slog"

	"github.com/kestrel-labs/wsext/header"
)

// GenerateOffer builds the client-side offer header value by asking each
// registered extension, in registry order, to create a client session and
// propose parameters. RSV bits are not enforced at offer time: a client
// may offer mutually conflicting extensions and let the server's response
// resolve the conflict.
//
// After this call, the manager's active-session list is reset to empty
// and its index holds exactly one entry per extension whose factory
// returned a session (including extensions that had nothing to offer).
func (m *Manager) GenerateOffer() *string {
	m.index = make(map[string]indexEntry, len(m.registry.inOrder))
	m.sessions = nil
	m.sessionNames = nil

	var fragments []string
	for _, ext := range m.registry.inOrder {
		session, ok := ext.CreateClientSession()
		if !ok || session == nil {
			continue
		}
		m.index[ext.Name()] = indexEntry{ext: ext, session: session}

		offers, ok := session.GenerateOffer()
		if !ok {
			m.logger.Debug("extension has nothing to offer", slog.String("extension", ext.Name()))
			continue
		}
		for _, params := range offers {
			fragments = append(fragments, header.SerializeParams(ext.Name(), params))
		}
	}
	if len(fragments) == 0 {
		return nil
	}
	joined := header.JoinOffers(fragments)
	return &joined
}

// Activate applies a server's response header to the sessions created by
// the most recent GenerateOffer call, in the order entries appear in the
// header. On any failure the call aborts immediately; the caller must not
// use the manager's pipeline methods without re-negotiating (calling
// GenerateOffer again).
func (m *Manager) Activate(headerValue *string) error {
	offers, err := header.ParseHeader(headerValue)
	if err != nil {
		return err
	}

	for _, entry := range offers.Entries() {
		ix, known := m.index[entry.Name]
		if !known {
			if m.strictUnknownExtension {
				return newExtensionError(fmt.Sprintf("unknown extension %q in activation header", entry.Name))
			}
			m.logger.Warn("skipping unknown extension in activation header", slog.String("extension", entry.Name))
			continue
		}
		if slot, owner, conflict := m.rsvConflict(ix.ext); conflict {
			return newExtensionError(fmt.Sprintf("extension %q conflicts with %q over %s", entry.Name, owner, slotName(slot)))
		}
		if !ix.session.Activate(entry.Params) {
			return newExtensionError(fmt.Sprintf("extension %q rejected activation parameters", entry.Name))
		}
		if m.maxActiveSessions > 0 && len(m.sessions) >= m.maxActiveSessions {
			return newExtensionError(fmt.Sprintf("active session limit (%d) exceeded", m.maxActiveSessions))
		}
		m.reserveRSV(ix.ext)
		m.sessions = append(m.sessions, ix.session)
		m.sessionNames = append(m.sessionNames, entry.Name)
	}
	return nil
}
