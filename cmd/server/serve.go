package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"reservehub/internal/database"
	"reservehub/internal/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := openEnv(true)
	if err != nil {
		return err
	}
	defer env.close()
	log := env.log

	if err := database.SeedAdmin(env.db, &env.cfg.Admin, log); err != nil {
		log.Error("admin seed failed", zap.Error(err))
	}

	app, err := env.app(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if spec := env.cfg.Reminder.Schedule; spec != "" {
		sched, err := scheduler.New(spec, env.cfg.Reminder.TimeZone, func(ctx context.Context) {
			app.Reminders.ProcessAll(ctx)
		}, log)
		if err != nil {
			return fmt.Errorf("reminder schedule %q: %w", spec, err)
		}
		sched.Start()
		defer sched.Stop()
	} else {
		log.Info("in-process reminders disabled; trigger /api/cron/reminders externally")
	}

	srv := &http.Server{
		Addr:         ":" + env.cfg.Server.Port,
		Handler:      app.Engine,
		ReadTimeout:  env.cfg.Server.ReadTimeout,
		WriteTimeout: env.cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
