package deflate

import (
	"github.com/kestrel-labs/wsext/header"
	"github.com/kestrel-labs/wsext/permessage"
)

// Name is the extension token this package negotiates under.
const Name = "permessage-deflate"

// Extension is a reference permessage.Extension implementing RFC
// 7692-shaped permessage-deflate negotiation over the standard library's
// DEFLATE codec. It exists to give the header grammar and negotiation
// engine a realistic consumer; it is not required to use package
// permessage, which accepts any Extension implementation.
type Extension struct {
	preferred Config
}

var _ permessage.Extension = (*Extension)(nil)

// New validates cfg and returns an Extension that offers/accepts it.
func New(cfg Config) (*Extension, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extension{preferred: cfg}, nil
}

func (e *Extension) Name() string                  { return Name }
func (e *Extension) Type() permessage.ExtensionType { return permessage.TypePerMessage }
func (e *Extension) RSV1() bool                     { return true }
func (e *Extension) RSV2() bool                     { return false }
func (e *Extension) RSV3() bool                     { return false }

// CreateClientSession always builds a session: this reference extension
// has no per-connection reason to decline offering.
func (e *Extension) CreateClientSession() (permessage.Session, bool) {
	return newSession(roleClient, e.preferred), true
}

// CreateServerSession accepts the first offer whose parameters are within
// bounds and declines (ok=false) if none are, per the "any" acceptance
// rule this reference implementation follows — a stricter server could
// inspect every element of offers and pick a preferred one instead.
func (e *Extension) CreateServerSession(offers []header.Params) (permessage.Session, bool) {
	for _, offer := range offers {
		cfg, err := paramsToConfig(offer)
		if err != nil {
			continue
		}
		return newSession(roleServer, cfg), true
	}
	return nil, false
}
