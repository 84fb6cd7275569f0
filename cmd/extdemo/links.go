package main

import (
	"fmt"

	"github.com/yosida95/uritemplate/v3"
)

// linkTemplates holds the parsed RFC 6570 templates for the hypermedia
// links this demo server includes in its negotiation responses, so a
// client can discover related endpoints without hardcoding paths.
type linkTemplates struct {
	// introspect points at the /debug/manager endpoint; it doubles as the
	// "self" URI a debug response includes about itself.
	introspect *uritemplate.Template
	resume     *uritemplate.Template
}

func newLinkTemplates(baseURL string) (*linkTemplates, error) {
	introspectTmpl, err := uritemplate.New(baseURL + "/debug/manager{?conn_id}")
	if err != nil {
		return nil, fmt.Errorf("links: parsing introspect template: %w", err)
	}
	resumeTmpl, err := uritemplate.New(baseURL + "/negotiate{?resume}")
	if err != nil {
		return nil, fmt.Errorf("links: parsing resume template: %w", err)
	}
	return &linkTemplates{introspect: introspectTmpl, resume: resumeTmpl}, nil
}

// hyperlinks describes the related-resource URLs advertised alongside a
// negotiation result.
type hyperlinks struct {
	Introspect string `json:"introspect"`
	Resume     string `json:"resume"`
}

func (lt *linkTemplates) build(connID, resumptionToken string) (hyperlinks, error) {
	introspectVars := uritemplate.Values{}
	introspectVars.Set("conn_id", uritemplate.String(connID))
	introspect, err := lt.introspect.Expand(introspectVars)
	if err != nil {
		return hyperlinks{}, fmt.Errorf("links: expanding introspect template: %w", err)
	}

	resumeVars := uritemplate.Values{}
	resumeVars.Set("resume", uritemplate.String(resumptionToken))
	resume, err := lt.resume.Expand(resumeVars)
	if err != nil {
		return hyperlinks{}, fmt.Errorf("links: expanding resume template: %w", err)
	}

	return hyperlinks{Introspect: introspect, Resume: resume}, nil
}
