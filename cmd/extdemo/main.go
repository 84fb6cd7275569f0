// Command extdemo runs a small HTTP server exposing a single handshake
// endpoint that negotiates permessage extensions over a Sec-WebSocket-
// Extensions-shaped header, authenticating callers with a bearer token
// and recording the result in Redis. It exists to give this module's
// ambient and domain dependencies a real, runnable home instead of only
// living in unit tests.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/kestrel-labs/wsext/config"
	"github.com/kestrel-labs/wsext/internal/connlog"
	"github.com/kestrel-labs/wsext/internal/policy"
	"github.com/kestrel-labs/wsext/permessage"
	"github.com/kestrel-labs/wsext/permessage/deflate"
)

// serverConfig holds extdemo-specific environment settings, decoded
// alongside the shared config.Config.
type serverConfig struct {
	Addr    string `env:"WSEXT_ADDR,default=:8080"`
	BaseURL string `env:"WSEXT_BASE_URL,default=http://localhost:8080"`

	AuthMode    string `env:"WSEXT_AUTH_MODE,default=static"`
	OIDCIssuer  string `env:"WSEXT_OIDC_ISSUER,default="`
	OIDCAud     string `env:"WSEXT_OIDC_AUDIENCE,default="`
	StaticToken string `env:"WSEXT_STATIC_TOKEN,default=devtoken"`

	RegistryConfig
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ambient, err := config.Load()
	if err != nil {
		return err
	}
	var svcCfg serverConfig
	if err := envdecode.Decode(&svcCfg); err != nil {
		return fmt.Errorf("extdemo: decoding server config: %w", err)
	}

	baseHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ambient.SlogLevel()})
	logger := slog.New(connlog.Handler{Handler: baseHandler})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var allowlist permessage.Allowlist
	if ambient.AllowlistPath != "" {
		a, err := policy.NewAllowlist(ambient.AllowlistPath, ambient.AllowlistWatch, policy.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("extdemo: loading allowlist: %w", err)
		}
		defer a.Close()
		allowlist = a
	}

	auth, err := buildAuthenticator(ctx, svcCfg)
	if err != nil {
		return err
	}

	registry, err := NewConnectionRegistry(ctx, svcCfg.RegistryConfig)
	if err != nil {
		logger.Warn("connection registry unavailable, continuing without it", slog.String("err", err.Error()))
		registry = nil
	} else {
		defer registry.Close()
	}

	resumption, err := NewResumptionSigner(10 * time.Minute)
	if err != nil {
		return err
	}

	links, err := newLinkTemplates(svcCfg.BaseURL)
	if err != nil {
		return err
	}

	limiter := NewHandshakeRateLimiter(5, 10)

	// extensions is the fixed, registry-ordered set this server supports.
	// It is built once and shared: Extension is an immutable descriptor
	// (state lives in the Session objects it creates per connection), and
	// the debug handler needs the same ordering a Manager used to resolve
	// RSV ownership so it can replay that assignment later.
	deflateExt, err := deflate.New(deflate.Config{})
	if err != nil {
		return fmt.Errorf("extdemo: constructing built-in deflate extension: %w", err)
	}
	extensions := []permessage.Extension{deflateExt}

	newManager := func(subject string) *permessage.Manager {
		opts := []permessage.Option{
			permessage.WithLogger(logger),
			permessage.WithStrictUnknownExtension(ambient.StrictUnknownExtension),
		}
		if ambient.MaxActiveSessions > 0 {
			opts = append(opts, permessage.WithMaxActiveSessions(ambient.MaxActiveSessions))
		}
		if allowlist != nil {
			opts = append(opts, permessage.WithAllowlist(allowlist))
		}
		mgr := permessage.New(opts...)
		for _, ext := range extensions {
			if err := mgr.Add(ext); err != nil {
				logger.Error("failed to register extension", slog.String("extension", ext.Name()), slog.String("err", err.Error()))
			}
		}
		return mgr
	}

	handler := NewNegotiationHandler(logger, auth, limiter, links, resumption, registry, newManager)
	debugHandler := NewDebugHandler(logger, auth, registry, links, extensions)

	mux := http.NewServeMux()
	mux.Handle("/negotiate", handler)
	mux.Handle("/debug/manager", debugHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              svcCfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", svcCfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildAuthenticator(ctx context.Context, cfg serverConfig) (Authenticator, error) {
	switch cfg.AuthMode {
	case "oidc":
		return NewOIDCAuthenticator(ctx, OIDCAuthenticatorConfig{
			Issuer:   cfg.OIDCIssuer,
			Audience: cfg.OIDCAud,
			Leeway:   time.Minute,
		})
	case "static", "":
		return &StaticAuthenticator{Token: cfg.StaticToken}, nil
	default:
		return nil, fmt.Errorf("extdemo: unknown WSEXT_AUTH_MODE %q", cfg.AuthMode)
	}
}
