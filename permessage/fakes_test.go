package permessage

import "github.com/kestrel-labs/wsext/header"

// fakeExtension and fakeSession give tests full control over the
// Extension/Session contract without pulling in a real codec.

type fakeExtension struct {
	name             string
	typ              ExtensionType
	rsv1, rsv2, rsv3 bool

	createClient func() (Session, bool)
	createServer func(offers []header.Params) (Session, bool)
}

func newFakeExtension(name string) *fakeExtension {
	return &fakeExtension{name: name, typ: TypePerMessage}
}

func (e *fakeExtension) Name() string       { return e.name }
func (e *fakeExtension) Type() ExtensionType { return e.typ }
func (e *fakeExtension) RSV1() bool         { return e.rsv1 }
func (e *fakeExtension) RSV2() bool         { return e.rsv2 }
func (e *fakeExtension) RSV3() bool         { return e.rsv3 }

func (e *fakeExtension) CreateClientSession() (Session, bool) {
	if e.createClient == nil {
		return nil, false
	}
	return e.createClient()
}

func (e *fakeExtension) CreateServerSession(offers []header.Params) (Session, bool) {
	if e.createServer == nil {
		return nil, false
	}
	return e.createServer(offers)
}

type fakeSession struct {
	name string

	offerParams []header.Params
	offerOK     bool

	responseParams header.Params

	activateFunc func(header.Params) bool
	activateOK   bool // used when activateFunc is nil: always return this

	outgoingFunc func(Message) (Message, error)
	incomingFunc func(Message) (Message, error)

	rsvPermission RSVPermission

	closed     bool
	closePanic any
}

func (s *fakeSession) GenerateOffer() ([]header.Params, bool) {
	return s.offerParams, s.offerOK
}

func (s *fakeSession) GenerateResponse() header.Params { return s.responseParams }

func (s *fakeSession) Activate(p header.Params) bool {
	if s.activateFunc != nil {
		return s.activateFunc(p)
	}
	return s.activateOK
}

func (s *fakeSession) ProcessOutgoingMessage(m Message) (Message, error) {
	if s.outgoingFunc != nil {
		return s.outgoingFunc(m)
	}
	return m, nil
}

func (s *fakeSession) ProcessIncomingMessage(m Message) (Message, error) {
	if s.incomingFunc != nil {
		return s.incomingFunc(m)
	}
	return m, nil
}

func (s *fakeSession) ValidFrameRSV(f Frame) RSVPermission { return s.rsvPermission }

func (s *fakeSession) Close() {
	s.closed = true
	if s.closePanic != nil {
		panic(s.closePanic)
	}
}
