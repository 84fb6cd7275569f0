package permessage

import (
	"log/slog"

	"github.com/google/uuid"
)

// Manager negotiates, orders, and pipelines a set of per-message
// extensions for one connection. It is single-threaded and synchronous:
// no method blocks, suspends, or performs I/O (the optional logger is the
// caller's own side channel). A Manager is owned exclusively by the
// connection that created it and must not be shared across goroutines
// without external synchronization.
type Manager struct {
	id     string
	logger *slog.Logger

	registry *Registry

	// index maps extension name to the extension/session pair created
	// during GenerateOffer. It is populated only on the client (offer)
	// side.
	index map[string]indexEntry

	sessions     []Session
	sessionNames []string

	rsv [3]string // "" means unreserved, else the owning extension's name

	strictUnknownExtension bool
	maxActiveSessions      int

	closed bool
}

type indexEntry struct {
	ext     Extension
	session Session
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLogger overrides the default logger (slog.Default()). A nil logger
// is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithConnID overrides the manager's random connection id, useful when the
// caller already has a correlation id for this connection (e.g. one
// assigned by an accept loop) and wants logs to share it.
func WithConnID(id string) Option {
	return func(m *Manager) {
		if id != "" {
			m.id = id
		}
	}
}

// WithAllowlist restricts which extension names Add will accept.
func WithAllowlist(a Allowlist) Option {
	return func(m *Manager) { m.registry.allowlist = a }
}

// WithStrictUnknownExtension controls whether Activate treats an unknown
// extension name in the server's response header as a hard ExtensionError
// (the default, and spec-mandated behavior) or logs and skips it.
func WithStrictUnknownExtension(strict bool) Option {
	return func(m *Manager) { m.strictUnknownExtension = strict }
}

// WithMaxActiveSessions caps how many sessions may become active via
// Activate or GenerateResponse. Zero (the default) means unbounded.
func WithMaxActiveSessions(n int) Option {
	return func(m *Manager) { m.maxActiveSessions = n }
}

// New constructs a Manager with no registered extensions.
func New(opts ...Option) *Manager {
	m := &Manager{
		id:                     uuid.NewString(),
		logger:                 slog.Default(),
		registry:               newRegistry(),
		index:                  make(map[string]indexEntry),
		strictUnknownExtension: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(slog.String("conn_id", m.id))
	return m
}

// ConnID returns the manager's connection id, used to correlate log lines
// for this connection across a caller's own logging.
func (m *Manager) ConnID() string { return m.id }

// Add registers ext. See Registry for validation rules.
func (m *Manager) Add(ext Extension) error {
	return m.registry.add(ext)
}

// ActiveExtensionNames returns the names of the currently active sessions,
// in pipeline (outgoing) order.
func (m *Manager) ActiveExtensionNames() []string {
	out := make([]string, len(m.sessionNames))
	copy(out, m.sessionNames)
	return out
}

// Close tears down every active session in pipeline (outgoing) order,
// best-effort. On the server side that is registration order; on the
// client side it is the order of the server's response header, not
// registration order. A session that panics on Close is logged and skipped
// rather than propagated. Behavior of any Manager method after Close is
// unspecified; implementations may treat further calls as no-ops.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for i, s := range m.sessions {
		m.closeSession(i, s)
	}
}

func (m *Manager) closeSession(i int, s Session) {
	defer func() {
		if r := recover(); r != nil {
			name := "<unknown>"
			if i < len(m.sessionNames) {
				name = m.sessionNames[i]
			}
			m.logger.Warn("session close panicked, ignoring", slog.String("extension", name), slog.Any("recover", r))
		}
	}()
	s.Close()
}
