package deflate

import (
	"github.com/kestrel-labs/wsext/header"
	"github.com/kestrel-labs/wsext/permessage"
)

type role int

const (
	roleClient role = iota
	roleServer
)

// Session implements permessage.Session for one negotiated
// permessage-deflate instance. It keeps a small rolling dictionary per
// direction when context takeover is enabled for that direction, and
// discards it (compressing/decompressing with no dictionary) otherwise.
type Session struct {
	role role
	// offer carries the parameters this session wants to propose
	// (client role only); cfg carries the parameters actually in effect
	// once activated/accepted.
	offer Config
	cfg   Config

	outDict []byte
	inDict  []byte

	closed bool
}

var _ permessage.Session = (*Session)(nil)

func newSession(r role, cfg Config) *Session {
	return &Session{role: r, offer: cfg, cfg: cfg}
}

// outgoingNoContextTakeover reports whether this session's compressor
// (the direction messages flow out) should discard its dictionary between
// messages.
func (s *Session) outgoingNoContextTakeover() bool {
	if s.role == roleClient {
		return s.cfg.ClientNoContextTakeover
	}
	return s.cfg.ServerNoContextTakeover
}

// incomingNoContextTakeover mirrors outgoingNoContextTakeover for the
// decompressor.
func (s *Session) incomingNoContextTakeover() bool {
	if s.role == roleClient {
		return s.cfg.ServerNoContextTakeover
	}
	return s.cfg.ClientNoContextTakeover
}

func (s *Session) GenerateOffer() ([]header.Params, bool) {
	if s.role != roleClient {
		return nil, false
	}
	return []header.Params{configToParams(s.offer)}, true
}

func (s *Session) GenerateResponse() header.Params {
	return configToParams(s.cfg)
}

func (s *Session) Activate(params header.Params) bool {
	cfg, err := paramsToConfig(params)
	if err != nil {
		return false
	}
	s.cfg = cfg
	return true
}

func (s *Session) ProcessOutgoingMessage(m permessage.Message) (permessage.Message, error) {
	dict := s.outDict
	if s.outgoingNoContextTakeover() {
		dict = nil
	}
	compressed, err := compressMessage(m.Payload, dict)
	if err != nil {
		return permessage.Message{}, err
	}
	if !s.outgoingNoContextTakeover() {
		s.outDict = trimDict(append(append([]byte{}, s.outDict...), m.Payload...))
	}
	out := m
	out.Payload = compressed
	return out, nil
}

func (s *Session) ProcessIncomingMessage(m permessage.Message) (permessage.Message, error) {
	dict := s.inDict
	if s.incomingNoContextTakeover() {
		dict = nil
	}
	plain, err := decompressMessage(m.Payload, dict)
	if err != nil {
		return permessage.Message{}, err
	}
	if !s.incomingNoContextTakeover() {
		s.inDict = trimDict(append(append([]byte{}, s.inDict...), plain...))
	}
	out := m
	out.Payload = plain
	return out, nil
}

func (s *Session) ValidFrameRSV(frame permessage.Frame) permessage.RSVPermission {
	return permessage.RSVPermission{RSV1: true}
}

func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.outDict = nil
	s.inDict = nil
}
