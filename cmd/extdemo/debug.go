package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/elnormous/contenttype"
	"github.com/invopop/jsonschema"

	"github.com/kestrel-labs/wsext/permessage"
	"github.com/kestrel-labs/wsext/permessage/deflate"
)

var textMediaType = contenttype.NewMediaType("text/plain")

// DebugHandler exposes a bearer-protected introspection view of one
// connection's negotiated extensions, mirroring the RSV bookkeeping a
// permessage.Manager performed during that connection's negotiation.
type DebugHandler struct {
	log      *slog.Logger
	auth     Authenticator
	registry *ConnectionRegistry
	links    *linkTemplates
	// extensions is the same registry-ordered slice every newManager
	// closure adds to a Manager, so RSV slot ownership can be replayed
	// deterministically without a live Manager to ask.
	extensions []permessage.Extension
}

// NewDebugHandler builds a handler serving /debug/manager.
func NewDebugHandler(log *slog.Logger, auth Authenticator, registry *ConnectionRegistry, links *linkTemplates, extensions []permessage.Extension) *DebugHandler {
	return &DebugHandler{log: log, auth: auth, registry: registry, links: links, extensions: extensions}
}

type debugResponse struct {
	ConnID      string                        `json:"conn_id"`
	Active      []string                      `json:"active_extensions"`
	ReservedRSV map[string]string             `json:"reserved_rsv"`
	Self        string                        `json:"self"`
	Schemas     map[string]*jsonschema.Schema `json:"schemas,omitempty"`
}

func (h *DebugHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if _, err := h.auth.CheckAuthentication(ctx, r); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="wsext"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.log.ErrorContext(ctx, "authentication failed unexpectedly", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	connID := r.URL.Query().Get("conn_id")
	if connID == "" {
		http.Error(w, "conn_id query parameter is required", http.StatusBadRequest)
		return
	}

	if h.registry == nil {
		http.Error(w, "connection registry unavailable", http.StatusServiceUnavailable)
		return
	}

	active, err := h.registry.ActiveExtensions(ctx, connID)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to read connection registry", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if active == nil {
		http.Error(w, "unknown connection", http.StatusNotFound)
		return
	}

	self, err := h.links.build(connID, "")
	if err != nil {
		h.log.ErrorContext(ctx, "failed to build self link", slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := debugResponse{
		ConnID:      connID,
		Active:      active,
		ReservedRSV: h.reservedRSV(active),
		Self:        self.Introspect,
		Schemas:     h.schemasFor(active),
	}

	accepted := jsonMediaType
	if a := r.Header.Get("Accept"); a != "" {
		if m, _, err := contenttype.GetAcceptableMediaType(r, []contenttype.MediaType{jsonMediaType, textMediaType}); err == nil {
			accepted = m
		}
	}

	if accepted.Matches(textMediaType) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "conn_id: %s\nactive: %v\nreserved_rsv: %v\nself: %s\n", resp.ConnID, resp.Active, resp.ReservedRSV, resp.Self)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.ErrorContext(ctx, "failed to encode debug response", slog.String("err", err.Error()))
	}
}

// reservedRSV replays the same first-seen-in-registry-order-wins RSV slot
// assignment a Manager performs during negotiation (see
// permessage.Manager.reserveRSV), restricted to the extensions that ended
// up active on this connection.
func (h *DebugHandler) reservedRSV(active []string) map[string]string {
	activeSet := make(map[string]bool, len(active))
	for _, name := range active {
		activeSet[name] = true
	}

	var rsv [3]string
	for _, ext := range h.extensions {
		if !activeSet[ext.Name()] {
			continue
		}
		claims := [3]bool{ext.RSV1(), ext.RSV2(), ext.RSV3()}
		for i, claimed := range claims {
			if claimed && rsv[i] == "" {
				rsv[i] = ext.Name()
			}
		}
	}

	out := map[string]string{}
	names := [3]string{"rsv1", "rsv2", "rsv3"}
	for i, owner := range rsv {
		if owner != "" {
			out[names[i]] = owner
		}
	}
	return out
}

// schemasFor returns the configuration schema of every active extension
// that publishes one, keyed by extension name.
func (h *DebugHandler) schemasFor(active []string) map[string]*jsonschema.Schema {
	activeSet := make(map[string]bool, len(active))
	for _, name := range active {
		activeSet[name] = true
	}

	out := map[string]*jsonschema.Schema{}
	for _, ext := range h.extensions {
		if !activeSet[ext.Name()] {
			continue
		}
		if _, ok := ext.(*deflate.Extension); ok {
			out[ext.Name()] = deflate.Schema()
		}
	}
	return out
}
