// Package connlog enriches slog records with connection and extension
// context pulled from a context.Context, the way a handshake server needs
// to correlate a burst of log lines with one negotiation.
package connlog

import (
	"context"
	"log/slog"
)

// Handler wraps another slog.Handler and adds connection/extension groups
// to every record that has them attached via the With* functions below.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if cd, ok := ctx.Value(connDataKey{}).(*ConnData); ok {
		r.AddAttrs(slog.Group("conn",
			slog.String("id", cd.ConnID),
			slog.String("remote_addr", cd.RemoteAddr),
			slog.String("user_agent", cd.UserAgent),
		))
	}

	if ed, ok := ctx.Value(extDataKey{}).(*ExtData); ok {
		r.AddAttrs(slog.Group("ext",
			slog.String("name", ed.Name),
			slog.String("role", ed.Role),
		))
	}

	return h.Handler.Handle(ctx, r)
}

type connDataKey struct{}

// ConnData identifies the connection a log line belongs to.
type ConnData struct {
	ConnID     string
	RemoteAddr string
	UserAgent  string
}

// WithConnData attaches ConnData to ctx for subsequent logging.
func WithConnData(ctx context.Context, data *ConnData) context.Context {
	return context.WithValue(ctx, connDataKey{}, data)
}

type extDataKey struct{}

// ExtData identifies which extension a log line concerns, e.g. while a
// Manager is folding a message through a session's pipeline hooks.
type ExtData struct {
	Name string
	Role string // "client" or "server"
}

// WithExtData attaches ExtData to ctx for subsequent logging.
func WithExtData(ctx context.Context, data *ExtData) context.Context {
	return context.WithValue(ctx, extDataKey{}, data)
}
