package permessage

import "fmt"

// ProcessOutgoingMessage folds the active sessions left-to-right:
// m <- session.ProcessOutgoingMessage(m). If any session returns an
// error, the fold halts immediately, remaining sessions are not invoked,
// and the failure is wrapped exactly once into an *ExtensionError.
func (m *Manager) ProcessOutgoingMessage(msg Message) (Message, error) {
	for i, s := range m.sessions {
		next, err := s.ProcessOutgoingMessage(msg)
		if err != nil {
			return Message{}, wrapExtensionError(fmt.Sprintf("outgoing message rejected by %q", m.sessionNames[i]), err)
		}
		msg = next
	}
	return msg, nil
}

// ProcessIncomingMessage folds the active sessions right-to-left, the
// reverse of ProcessOutgoingMessage's order. Failure semantics match
// ProcessOutgoingMessage.
func (m *Manager) ProcessIncomingMessage(msg Message) (Message, error) {
	for i := len(m.sessions) - 1; i >= 0; i-- {
		next, err := m.sessions[i].ProcessIncomingMessage(msg)
		if err != nil {
			return Message{}, wrapExtensionError(fmt.Sprintf("incoming message rejected by %q", m.sessionNames[i]), err)
		}
		msg = next
	}
	return msg, nil
}
