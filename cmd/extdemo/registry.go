package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RegistryConfig configures a Redis-backed record of which extensions are
// active on which connection, so a fleet of handshake servers behind a
// load balancer can be introspected from one place.
type RegistryConfig struct {
	// RedisAddr like "localhost:6379". ENV: WSEXT_REDIS_ADDR
	RedisAddr string `env:"WSEXT_REDIS_ADDR,default=localhost:6379"`
	// KeyPrefix namespaces every key this registry writes.
	// ENV: WSEXT_REDIS_KEY_PREFIX
	KeyPrefix string `env:"WSEXT_REDIS_KEY_PREFIX,default=wsext:conn:"`
	// TTL bounds how long a connection record survives an unclean
	// shutdown that skips Forget. ENV: WSEXT_REDIS_TTL
	TTL time.Duration `env:"WSEXT_REDIS_TTL,default=1h"`
}

// ConnectionRegistry records, per connection id, the extension names that
// became active during negotiation. It is the one component in this
// module that performs real network I/O, confined to the demo binary so
// that package permessage itself stays synchronous and dependency-free.
type ConnectionRegistry struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewConnectionRegistry dials Redis and verifies connectivity with a Ping.
func NewConnectionRegistry(ctx context.Context, cfg RegistryConfig) (*ConnectionRegistry, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("registry: connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "wsext:conn:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ConnectionRegistry{client: client, prefix: prefix, ttl: ttl}, nil
}

func (r *ConnectionRegistry) key(connID string) string {
	return r.prefix + connID
}

// Record stores the extension names active on connID, replacing any prior
// record for the same id.
func (r *ConnectionRegistry) Record(ctx context.Context, connID string, extensions []string) error {
	return r.client.Set(ctx, r.key(connID), strings.Join(extensions, ","), r.ttl).Err()
}

// ActiveExtensions returns the extension names most recently recorded for
// connID, or nil if the connection is unknown or its record has expired.
func (r *ConnectionRegistry) ActiveExtensions(ctx context.Context, connID string) ([]string, error) {
	val, err := r.client.Get(ctx, r.key(connID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: reading %s: %w", connID, err)
	}
	if val == "" {
		return nil, nil
	}
	return strings.Split(val, ","), nil
}

// Forget removes connID's record, e.g. on graceful connection close.
func (r *ConnectionRegistry) Forget(ctx context.Context, connID string) error {
	return r.client.Del(ctx, r.key(connID)).Err()
}

// Close releases the underlying Redis client.
func (r *ConnectionRegistry) Close() error {
	return r.client.Close()
}
