package main

import (
	"context"
	"fmt"
	"os"

	"reservehub/config"
	"reservehub/internal/database"
	"reservehub/internal/logging"
	"reservehub/internal/router"
	"reservehub/internal/service"
	"reservehub/pkg/cloudinary"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reservehub",
		Short:         "Reserves administration backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), migrateCmd(), remindCmd(), seedCmd())
	return cmd
}

// runtimeEnv is what every command needs: config, a logger and an open, migrated store.
type runtimeEnv struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func openEnv(migrate bool) (*runtimeEnv, error) {
	cfg := config.Load()
	log, err := logging.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("database: %w", err)
	}
	if migrate {
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &runtimeEnv{cfg: cfg, log: log, db: db}, nil
}

func (e *runtimeEnv) close() {
	if err := database.Close(e.db); err != nil {
		e.log.Warn("database close failed", zap.Error(err))
	}
	_ = e.log.Sync()
}

// app wires the HTTP surface with whichever optional integrations are configured.
func (e *runtimeEnv) app(ctx context.Context) (*router.App, error) {
	var cloud cloudinary.Client
	if c := e.cfg.Cloudinary; c.CloudName != "" && c.APIKey != "" && c.APISecret != "" {
		client, err := cloudinary.NewClientFromParams(c.CloudName, c.APIKey, c.APISecret)
		if err != nil {
			return nil, fmt.Errorf("cloudinary: %w", err)
		}
		cloud = client
	} else {
		e.log.Info("photo uploads disabled: set CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET to enable")
	}

	var push service.Pusher
	if fcm := service.NewFCMService(ctx, e.cfg.Firebase.ServiceAccountPath, e.log); fcm != nil {
		push = fcm
		e.log.Info("push notifications enabled")
	} else {
		e.log.Info("push notifications disabled")
	}
	return router.Setup(e.cfg, e.db, cloud, push, e.log)
}
