package permessage

import (
	"fmt"
	"log/slog"

	"github.com/kestrel-labs/wsext/header"
)

// GenerateResponse parses the client's offer header and, for each
// registered extension in registry order (not offer order), builds a
// server session if the extension was offered and does not conflict with
// an already-reserved RSV bit. Conflicting extensions are resolved
// "first seen in registry order wins": a later, weaker extension may
// still be accepted if an earlier, conflicting one declined to build a
// session.
func (m *Manager) GenerateResponse(headerValue *string) (*string, error) {
	offers, err := header.ParseHeader(headerValue)
	if err != nil {
		return nil, err
	}

	var fragments []string
	for _, ext := range m.registry.inOrder {
		offered := offers.ByName(ext.Name())
		if len(offered) == 0 {
			continue
		}
		if _, _, conflict := m.rsvConflict(ext); conflict {
			m.logger.Debug("skipping extension due to rsv conflict", slog.String("extension", ext.Name()))
			continue
		}
		session, ok := ext.CreateServerSession(offered)
		if !ok || session == nil {
			m.logger.Debug("extension declined to build a server session", slog.String("extension", ext.Name()))
			continue
		}
		if m.maxActiveSessions > 0 && len(m.sessions) >= m.maxActiveSessions {
			return nil, newExtensionError(fmt.Sprintf("active session limit (%d) exceeded", m.maxActiveSessions))
		}
		m.reserveRSV(ext)
		m.sessions = append(m.sessions, session)
		m.sessionNames = append(m.sessionNames, ext.Name())
		fragments = append(fragments, header.SerializeParams(ext.Name(), session.GenerateResponse()))
	}
	if len(fragments) == 0 {
		return nil, nil
	}
	joined := header.JoinOffers(fragments)
	return &joined, nil
}
