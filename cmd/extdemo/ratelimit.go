package main

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// HandshakeRateLimiter caps how many handshake attempts a single remote
// address may make per second, independent of any auth or extension
// policy, so a misbehaving client can't burn CPU on repeated failed
// negotiations. Limiters are created lazily per address and never
// evicted; a long-running deployment fronted by this demo would want an
// eviction policy, which is out of scope for a reference server.
type HandshakeRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewHandshakeRateLimiter builds a limiter allowing rps handshake attempts
// per second per remote address, with the given burst allowance.
func NewHandshakeRateLimiter(rps float64, burst int) *HandshakeRateLimiter {
	return &HandshakeRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (h *HandshakeRateLimiter) limiterFor(addr string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[addr]
	if !ok {
		l = rate.NewLimiter(h.rps, h.burst)
		h.limiters[addr] = l
	}
	return l
}

// Allow reports whether a handshake attempt from req's remote address may
// proceed.
func (h *HandshakeRateLimiter) Allow(req *http.Request) bool {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	return h.limiterFor(host).Allow()
}
