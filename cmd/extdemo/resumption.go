package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
)

// resumptionClaims is the payload signed into a resumption token: enough
// for a reconnecting client to prove which connection id and negotiated
// extensions it is entitled to resume, without the server keeping any
// server-side session table for the token itself.
type resumptionClaims struct {
	ConnID     string   `json:"conn_id"`
	Extensions []string `json:"ext"`
	Subject    string   `json:"sub"`
	IssuedAt   int64    `json:"iat"`
	ExpiresAt  int64    `json:"exp"`
}

// ResumptionSigner issues and verifies compact JWS resumption tokens using
// an Ed25519 key pair held in memory. It is the handshake-server analogue
// of a session-continuation token.
type ResumptionSigner struct {
	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	ttl  time.Duration
}

// NewResumptionSigner generates a fresh Ed25519 key pair for signing
// tokens with the given lifetime.
func NewResumptionSigner(ttl time.Duration) (*ResumptionSigner, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("resumption: generating key: %w", err)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ResumptionSigner{kid: "extdemo-1", priv: priv, pub: pub, ttl: ttl}, nil
}

// Issue signs a resumption token for the given connection.
func (s *ResumptionSigner) Issue(connID, subject string, extensions []string) (string, error) {
	now := time.Now()
	claims := resumptionClaims{
		ConnID:     connID,
		Extensions: extensions,
		Subject:    subject,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(s.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("resumption: marshaling claims: %w", err)
	}

	opts := (&jose.SignerOptions{}).WithType("JWT").WithHeader("kid", s.kid)
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.EdDSA, Key: s.priv}, opts)
	if err != nil {
		return "", fmt.Errorf("resumption: creating signer: %w", err)
	}
	signed, err := signer.Sign(payload)
	if err != nil {
		return "", fmt.Errorf("resumption: signing: %w", err)
	}
	return signed.CompactSerialize()
}

// Verify checks token's signature and expiry and returns its claims.
func (s *ResumptionSigner) Verify(token string) (*resumptionClaims, error) {
	sig, err := jose.ParseSigned(token, []jose.SignatureAlgorithm{jose.EdDSA})
	if err != nil {
		return nil, fmt.Errorf("resumption: parsing token: %w", err)
	}
	if len(sig.Signatures) != 1 {
		return nil, fmt.Errorf("resumption: unexpected signature count %d", len(sig.Signatures))
	}
	if sig.Signatures[0].Protected.KeyID != s.kid {
		return nil, fmt.Errorf("resumption: unknown key id %q", sig.Signatures[0].Protected.KeyID)
	}
	payload, err := sig.Verify(s.pub)
	if err != nil {
		return nil, fmt.Errorf("resumption: verifying signature: %w", err)
	}
	var claims resumptionClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("resumption: decoding claims: %w", err)
	}
	if time.Now().Unix() > claims.ExpiresAt {
		return nil, fmt.Errorf("resumption: token expired at %d", claims.ExpiresAt)
	}
	return &claims, nil
}
