package deflate

import (
	"bytes"
	"testing"

	"github.com/kestrel-labs/wsext/permessage"
)

func TestConfig_ValidateBounds(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value valid", Config{}, false},
		{"in bounds", Config{ServerMaxWindowBits: 10, ClientMaxWindowBits: 15}, false},
		{"server too small", Config{ServerMaxWindowBits: 7}, true},
		{"client too large", Config{ClientMaxWindowBits: 16}, true},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}

func TestExtension_FullClientServerNegotiation(t *testing.T) {
	t.Parallel()

	client, err := New(Config{ClientNoContextTakeover: true, ServerMaxWindowBits: 12})
	if err != nil {
		t.Fatalf("client New: %v", err)
	}
	server, err := New(Config{})
	if err != nil {
		t.Fatalf("server New: %v", err)
	}

	cm := permessage.New()
	if err := cm.Add(client); err != nil {
		t.Fatalf("client Add: %v", err)
	}
	offer := cm.GenerateOffer()
	if offer == nil {
		t.Fatalf("expected a client offer")
	}

	sm := permessage.New()
	if err := sm.Add(server); err != nil {
		t.Fatalf("server Add: %v", err)
	}
	response, err := sm.GenerateResponse(offer)
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if response == nil {
		t.Fatalf("expected a server response")
	}

	if err := cm.Activate(response); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, repeatedly, repeatedly")
	outgoing, err := cm.ProcessOutgoingMessage(permessage.Message{Payload: append([]byte{}, payload...)})
	if err != nil {
		t.Fatalf("client ProcessOutgoingMessage: %v", err)
	}
	if bytes.Equal(outgoing.Payload, payload) {
		t.Fatalf("expected payload to be transformed (compressed)")
	}

	incoming, err := sm.ProcessIncomingMessage(outgoing)
	if err != nil {
		t.Fatalf("server ProcessIncomingMessage: %v", err)
	}
	if !bytes.Equal(incoming.Payload, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", incoming.Payload, payload)
	}
}

func TestSession_ContextTakeoverReusesDictionaryAcrossMessages(t *testing.T) {
	t.Parallel()
	client, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	server, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cm := permessage.New()
	cm.Add(client)
	offer := cm.GenerateOffer()

	sm := permessage.New()
	sm.Add(server)
	resp, err := sm.GenerateResponse(offer)
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if err := cm.Activate(resp); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	msg1 := []byte("repeat this phrase several times for a compressible dictionary")
	msg2 := []byte("repeat this phrase several times for a compressible dictionary")

	out1, err := cm.ProcessOutgoingMessage(permessage.Message{Payload: msg1})
	if err != nil {
		t.Fatalf("outgoing 1: %v", err)
	}
	in1, err := sm.ProcessIncomingMessage(out1)
	if err != nil {
		t.Fatalf("incoming 1: %v", err)
	}
	if !bytes.Equal(in1.Payload, msg1) {
		t.Fatalf("message 1 mismatch")
	}

	out2, err := cm.ProcessOutgoingMessage(permessage.Message{Payload: msg2})
	if err != nil {
		t.Fatalf("outgoing 2: %v", err)
	}
	in2, err := sm.ProcessIncomingMessage(out2)
	if err != nil {
		t.Fatalf("incoming 2: %v", err)
	}
	if !bytes.Equal(in2.Payload, msg2) {
		t.Fatalf("message 2 mismatch")
	}
}

func TestExtension_ValidFrameRSV(t *testing.T) {
	t.Parallel()
	ext, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, ok := ext.CreateClientSession()
	if !ok {
		t.Fatalf("expected a client session")
	}
	perm := s.ValidFrameRSV(permessage.Frame{RSV1: true})
	if !perm.RSV1 || perm.RSV2 || perm.RSV3 {
		t.Fatalf("expected only RSV1 permitted, got %+v", perm)
	}
}
