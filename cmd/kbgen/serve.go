package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/goatkit/kbgen/internal/api"
	"github.com/goatkit/kbgen/internal/database"
	"github.com/goatkit/kbgen/internal/middleware"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP service and ticket-closed webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := database.Migrate(ctx, a.db); err != nil {
		return err
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, a.db, a.cfg.Database.Driver); err != nil {
		a.log.Warn().Err(err).Msg("db pool metrics unavailable")
	}

	if a.cfg.Log.Env != "dev" && a.cfg.Log.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Generator: a.generator,
		Queue:     a.queue,
		KB:        a.kb,
		Hook:      a.hook,
		Settings:  a.settings,
		JWTSecret: a.cfg.Admin.JWTSecret,
		RateLimit: a.cfg.Admin.RateLimit,
		Limiter:   middleware.NewRateLimiter(),
		DB:        a.db,
		Metrics:   a.metrics,
		Logger:    a.log,
	})

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("kbgen listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
