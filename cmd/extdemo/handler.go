package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/elnormous/contenttype"

	"github.com/kestrel-labs/wsext/header"
	"github.com/kestrel-labs/wsext/internal/connlog"
	"github.com/kestrel-labs/wsext/permessage"
)

const extensionsHeader = "Sec-WebSocket-Extensions"

var jsonMediaType = contenttype.NewMediaType("application/json")

// NegotiationHandler exposes a single POST endpoint that runs an incoming
// extension offer header through a permessage.Manager built from the
// server's registered extensions, and returns the response header value
// plus a signed resumption token and hypermedia links.
type NegotiationHandler struct {
	log        *slog.Logger
	auth       Authenticator
	limiter    *HandshakeRateLimiter
	links      *linkTemplates
	resumption *ResumptionSigner
	registry   *ConnectionRegistry
	newManager func(subject string) *permessage.Manager
}

// NewNegotiationHandler wires together the pieces of a handshake request.
// newManager is called once per request to build a Manager with the
// extensions and policy this server supports for that connection.
func NewNegotiationHandler(
	log *slog.Logger,
	auth Authenticator,
	limiter *HandshakeRateLimiter,
	links *linkTemplates,
	resumption *ResumptionSigner,
	registry *ConnectionRegistry,
	newManager func(subject string) *permessage.Manager,
) *NegotiationHandler {
	return &NegotiationHandler{
		log:        log,
		auth:       auth,
		limiter:    limiter,
		links:      links,
		resumption: resumption,
		registry:   registry,
		newManager: newManager,
	}
}

type negotiationResponse struct {
	ConnID          string     `json:"conn_id"`
	Extensions      string     `json:"extensions,omitempty"`
	ActiveNames     []string   `json:"active_extensions"`
	ResumptionToken string     `json:"resumption_token"`
	Links           hyperlinks `json:"links"`
}

func (h *NegotiationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.limiter != nil && !h.limiter.Allow(r) {
		http.Error(w, "too many handshake attempts", http.StatusTooManyRequests)
		return
	}

	ctx := r.Context()

	subject, err := h.auth.CheckAuthentication(ctx, r)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="wsext"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.log.ErrorContext(ctx, "authentication failed unexpectedly", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if accept := r.Header.Get("Accept"); accept != "" {
		if _, _, err := contenttype.GetAcceptableMediaType(r, []contenttype.MediaType{jsonMediaType}); err != nil {
			http.Error(w, "must accept application/json", http.StatusNotAcceptable)
			return
		}
	}

	mgr := h.newManager(subject)
	ctx = connlog.WithConnData(ctx, &connlog.ConnData{
		ConnID:     mgr.ConnID(),
		RemoteAddr: r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	})
	h.log.InfoContext(ctx, "negotiation.start", slog.String("subject", subject))

	var offerHeader *string
	if v := r.Header.Get(extensionsHeader); v != "" {
		offerHeader = &v
	}

	response, err := mgr.GenerateResponse(offerHeader)
	if err != nil {
		var perr *header.ParseError
		var eerr *permessage.ExtensionError
		switch {
		case errors.As(err, &perr):
			http.Error(w, fmt.Sprintf("malformed extensions header: %v", err), http.StatusBadRequest)
		case errors.As(err, &eerr):
			http.Error(w, fmt.Sprintf("negotiation failed: %v", err), http.StatusBadRequest)
		default:
			h.log.ErrorContext(ctx, "unexpected negotiation error", slog.String("err", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	active := mgr.ActiveExtensionNames()

	if h.registry != nil {
		if err := h.registry.Record(ctx, mgr.ConnID(), active); err != nil {
			h.log.WarnContext(ctx, "failed to record connection in registry", slog.String("err", err.Error()))
		}
	}

	token, err := h.resumption.Issue(mgr.ConnID(), subject, active)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to issue resumption token", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	links, err := h.links.build(mgr.ConnID(), token)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to build hyperlinks", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := negotiationResponse{
		ConnID:          mgr.ConnID(),
		ActiveNames:     active,
		ResumptionToken: token,
		Links:           links,
	}
	if response != nil {
		resp.Extensions = *response
		w.Header().Set(extensionsHeader, *response)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.ErrorContext(ctx, "failed to encode response", slog.String("err", err.Error()))
	}

	h.log.InfoContext(ctx, "negotiation.complete", slog.Any("active_extensions", active))
}
