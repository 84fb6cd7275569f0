package permessage

import (
	"testing"

	"github.com/kestrel-labs/wsext/header"
)

func paramsWith(kv ...any) header.Params {
	p := header.NewParams()
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			p.Set(key, header.TextValue(v))
		case int:
			p.Set(key, header.IntValue(int64(v)))
		case bool:
			if v {
				p.Set(key, header.FlagValue())
			}
		}
	}
	return p
}

func TestGenerateOffer_SingleParams(t *testing.T) {
	t.Parallel()
	m := New()
	ext := newFakeExtension("deflate")
	ext.createClient = func() (Session, bool) {
		return &fakeSession{offerParams: []header.Params{paramsWith("mode", "compress")}, offerOK: true}, true
	}
	if err := m.Add(ext); err != nil {
		t.Fatalf("add: %v", err)
	}
	got := m.GenerateOffer()
	if got == nil || *got != "deflate; mode=compress" {
		t.Fatalf("got %v, want %q", got, "deflate; mode=compress")
	}
}

func TestGenerateOffer_NoneWhenSessionDeclines(t *testing.T) {
	t.Parallel()
	m := New()
	ext := newFakeExtension("deflate")
	ext.createClient = func() (Session, bool) {
		return &fakeSession{offerOK: false}, true
	}
	if err := m.Add(ext); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := m.GenerateOffer(); got != nil {
		t.Fatalf("expected nil offer, got %v", got)
	}
}

func TestGenerateOffer_MultipleParamsSets(t *testing.T) {
	t.Parallel()
	m := New()
	ext := newFakeExtension("deflate")
	ext.createClient = func() (Session, bool) {
		return &fakeSession{
			offerParams: []header.Params{paramsWith("mode", "compress"), header.NewParams()},
			offerOK:     true,
		}, true
	}
	if err := m.Add(ext); err != nil {
		t.Fatalf("add: %v", err)
	}
	got := m.GenerateOffer()
	want := "deflate; mode=compress, deflate"
	if got == nil || *got != want {
		t.Fatalf("got %v, want %q", got, want)
	}
}

func TestActivate_UnknownExtension(t *testing.T) {
	t.Parallel()
	m := New()
	ext := newFakeExtension("deflate")
	ext.createClient = func() (Session, bool) { return &fakeSession{offerOK: false}, true }
	m.Add(ext)
	m.GenerateOffer()

	h := "xml"
	err := m.Activate(&h)
	if err == nil {
		t.Fatalf("expected ExtensionError for unknown extension")
	}
	if _, ok := err.(*ExtensionError); !ok {
		t.Fatalf("expected *ExtensionError, got %T", err)
	}
}

func TestActivate_RSVConflictFails(t *testing.T) {
	t.Parallel()
	m := New()
	deflate := newFakeExtension("deflate")
	deflate.rsv1 = true
	deflate.createClient = func() (Session, bool) { return &fakeSession{offerOK: false, activateOK: true}, true }

	tar := newFakeExtension("tar")
	tar.rsv1 = true
	tar.createClient = func() (Session, bool) { return &fakeSession{offerOK: false, activateOK: true}, true }

	m.Add(deflate)
	m.Add(tar)
	m.GenerateOffer()

	h := "deflate, tar"
	err := m.Activate(&h)
	if err == nil {
		t.Fatalf("expected ExtensionError for RSV1 conflict")
	}
}

func TestActivate_DifferentBitsSucceed(t *testing.T) {
	t.Parallel()
	m := New()
	deflate := newFakeExtension("deflate")
	deflate.rsv1 = true
	deflate.createClient = func() (Session, bool) { return &fakeSession{offerOK: false, activateOK: true}, true }

	reverse := newFakeExtension("reverse")
	reverse.rsv2 = true
	reverse.createClient = func() (Session, bool) { return &fakeSession{offerOK: false, activateOK: true}, true }

	m.Add(deflate)
	m.Add(reverse)
	m.GenerateOffer()

	h := "deflate, reverse"
	if err := m.Activate(&h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := m.ActiveExtensionNames()
	if len(names) != 2 || names[0] != "deflate" || names[1] != "reverse" {
		t.Fatalf("expected [deflate reverse], got %v", names)
	}
}

func TestActivate_RejectionOnNonTrue(t *testing.T) {
	t.Parallel()
	m := New()
	ext := newFakeExtension("deflate")
	ext.createClient = func() (Session, bool) {
		return &fakeSession{offerOK: false, activateOK: false}, true
	}
	m.Add(ext)
	m.GenerateOffer()

	h := "deflate"
	err := m.Activate(&h)
	if err == nil {
		t.Fatalf("expected ExtensionError for rejected activation")
	}
}

func TestGenerateResponse_CallsFactoryOnceWithAllOffers(t *testing.T) {
	t.Parallel()
	m := New()
	var captured []header.Params
	calls := 0
	ext := newFakeExtension("deflate")
	ext.createServer = func(offers []header.Params) (Session, bool) {
		calls++
		captured = offers
		return &fakeSession{responseParams: header.NewParams()}, true
	}
	m.Add(ext)

	h := "deflate; flag"
	if _, err := m.GenerateResponse(&h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected factory called once, got %d calls", calls)
	}
	if len(captured) != 1 {
		t.Fatalf("expected factory called with 1 offer, got %d", len(captured))
	}
	if !captured[0].Has("flag") {
		t.Fatalf("expected offer to contain flag param")
	}
}

func TestGenerateResponse_CollectsAllOffersForOneName(t *testing.T) {
	t.Parallel()
	m := New()
	var captured []header.Params
	ext := newFakeExtension("deflate")
	ext.createServer = func(offers []header.Params) (Session, bool) {
		captured = offers
		return &fakeSession{responseParams: header.NewParams()}, true
	}
	m.Add(ext)

	h := "deflate; a, deflate; b"
	if _, err := m.GenerateResponse(&h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(captured) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(captured))
	}
	if !captured[0].Has("a") || !captured[1].Has("b") {
		t.Fatalf("unexpected captured offers: %+v", captured)
	}
}

func TestGenerateResponse_RegistryOrderNotOfferOrder(t *testing.T) {
	t.Parallel()
	m := New()
	deflate := newFakeExtension("deflate")
	deflate.createServer = func(offers []header.Params) (Session, bool) {
		return &fakeSession{responseParams: paramsWith("mode", "compress")}, true
	}
	reverse := newFakeExtension("reverse")
	reverse.createServer = func(offers []header.Params) (Session, bool) {
		return &fakeSession{responseParams: paramsWith("utf8", true)}, true
	}
	m.Add(deflate)
	m.Add(reverse)

	h := "reverse, deflate"
	got, err := m.GenerateResponse(&h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "deflate; mode=compress, reverse; utf8"
	if got == nil || *got != want {
		t.Fatalf("got %v, want %q", got, want)
	}
}

func TestGenerateResponse_OmitsConflictingExtension(t *testing.T) {
	t.Parallel()
	m := New()
	deflate := newFakeExtension("deflate")
	deflate.rsv1 = true
	deflate.createServer = func(offers []header.Params) (Session, bool) {
		return &fakeSession{responseParams: paramsWith("mode", "compress")}, true
	}
	tar := newFakeExtension("tar")
	tar.rsv1 = true
	tar.createServer = func(offers []header.Params) (Session, bool) {
		return &fakeSession{responseParams: paramsWith("gzip", true)}, true
	}
	m.Add(deflate)
	m.Add(tar)

	h := "deflate, tar"
	got, err := m.GenerateResponse(&h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "deflate; mode=compress"
	if got == nil || *got != want {
		t.Fatalf("got %v, want %q", got, want)
	}
}

func TestGenerateResponse_RelaxesConflictWhenFirstDeclines(t *testing.T) {
	t.Parallel()
	m := New()
	deflate := newFakeExtension("deflate")
	deflate.rsv1 = true
	deflate.createServer = func(offers []header.Params) (Session, bool) {
		return nil, false
	}
	tar := newFakeExtension("tar")
	tar.rsv1 = true
	tar.createServer = func(offers []header.Params) (Session, bool) {
		return &fakeSession{responseParams: paramsWith("gzip", true)}, true
	}
	m.Add(deflate)
	m.Add(tar)

	h := "deflate, tar"
	got, err := m.GenerateResponse(&h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "tar; gzip"
	if got == nil || *got != want {
		t.Fatalf("got %v, want %q", got, want)
	}
}

func TestClose_IsBestEffortAndIdempotent(t *testing.T) {
	t.Parallel()
	m := New()
	s1 := &fakeSession{closePanic: "boom"}
	s2 := &fakeSession{}
	m.sessions = []Session{s1, s2}
	m.sessionNames = []string{"a", "b"}

	m.Close()
	if !s1.closed || !s2.closed {
		t.Fatalf("expected both sessions closed, got %v %v", s1.closed, s2.closed)
	}
	// Second call must be a no-op, not double-close.
	s2.closed = false
	m.Close()
	if s2.closed {
		t.Fatalf("expected Close to be a no-op after the first call")
	}
}
