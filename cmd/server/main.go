package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/config"
	"github.com/alextreichler/humbleautos/internal/handlers"
	"github.com/alextreichler/humbleautos/internal/seed"
)

const (
	clientIdleTimeout = 30 * time.Minute
	sweepInterval     = 5 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

func main() {
	// Load configuration first so LOG_LEVEL applies to everything after it.
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Using TextHandler for console readability; for production JSONHandler might be preferred.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited gracefully.")
}

func run(cfg *config.Config) error {
	// 1. Durable client storage
	kv, err := app.OpenStorage(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()
	slog.Info("Storage ready", "driver", cfg.StorageDriver)

	// 2. Seed data
	demo, err := app.LoadSeed(cfg.SeedFile, cfg.BcryptCost)
	if err != nil {
		return err
	}
	presets, err := seed.Filters()
	if err != nil {
		return err
	}
	registry := app.NewRegistry(kv, demo, app.Options{
		Latency:    cfg.Latency,
		BcryptCost: cfg.BcryptCost,
	})

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Routes
	h := &handlers.Handler{
		Registry:     registry,
		SessionStore: sessionStore,
		Filters:      presets,
	}
	rateLimiter := handlers.NewRateLimiter(time.Second)
	defer rateLimiter.Stop()
	mux := h.Routes(rateLimiter)

	// 5. Middleware Setup
	trusted := []string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}
	if cfg.FrontendOrigin != "" {
		if u, err := url.Parse(cfg.FrontendOrigin); err == nil && u.Host != "" {
			trusted = append(trusted, u.Host)
		}
	}
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trusted),
	)

	// Chain: Logger -> Security Headers -> CORS -> CSRF -> Mux
	var handler http.Handler = CSRF(mux)
	if cfg.FrontendOrigin != "" {
		handler = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins([]string{cfg.FrontendOrigin}),
			gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}),
			gorillahandlers.AllowedHeaders([]string{"Content-Type", "X-CSRF-Token"}),
			gorillahandlers.ExposedHeaders([]string{"X-CSRF-Token"}),
			gorillahandlers.AllowCredentials(),
		)(handler)
	}
	handler = handlers.LoggingMiddleware(handlers.SecurityHeadersMiddleware(handler))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Serve until a signal arrives
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server starting", "port", cfg.Port, "latency", cfg.Latency)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := registry.Sweep(clientIdleTimeout); n > 0 {
					slog.Debug("Dropped idle clients", "count", n, "active", registry.Len())
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
