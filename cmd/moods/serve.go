package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	adapthttp "moods/internal/adapter/http"
	"moods/internal/adapter/memory"
	"moods/internal/app"
	"moods/internal/metrics"
)

const (
	shutdownTimeout = 15 * time.Second
	pruneInterval   = time.Hour
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(parent context.Context) error {
	cfg := c.cfg
	log := c.log

	if !cfg.Auth.Disabled && cfg.Auth.OwnerUsername == "" {
		return errors.New("MOODS_OWNER_USERNAME is required unless MOODS_AUTH_DISABLED=true")
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	provider, closeProvider, err := openProvider(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := closeProvider(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("close provider")
		}
	}()

	sessions := memory.New().NewSessionRepo()
	authSvc := app.NewAuthService(app.Owner{
		Username:     cfg.Auth.OwnerUsername,
		PasswordHash: cfg.Auth.OwnerPasswordHash,
	}, sessions)
	analytics := app.NewAnalyticsService(provider)

	srv := adapthttp.New(provider, analytics, authSvc, cfg.WebDir).
		WithLogger(log).
		WithMetrics(m)
	if cfg.Auth.Disabled {
		log.Warn().Msg("authentication disabled")
		srv = srv.WithoutAuth()
	}
	if oc := cfg.Auth.OIDC; oc.Enabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, oc.Issuer, oc.ClientID, oc.ClientSecret, oc.RedirectURL)
		if err != nil {
			return err
		}
		srv = srv.WithOIDC(oidcCfg)
		log.Info().Str("issuer", oc.Issuer).Msg("sso enabled")
	}

	go pruneSessions(ctx, authSvc, c)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("storage", cfg.Storage.Driver).
			Str("insert_order", cfg.Moods.InsertOrder).
			Bool("deletes_enabled", cfg.Moods.DeletesEnabled).
			Msg("listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func pruneSessions(ctx context.Context, authSvc *app.AuthService, c *cli) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authSvc.PruneExpired(ctx); err != nil {
				c.log.Warn().Err(err).Msg("prune sessions")
			}
		}
	}
}
