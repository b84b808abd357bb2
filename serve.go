package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wink/config"
	"wink/middleware"
	"wink/routes"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var serveMigrate bool

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "apply database migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	flush, err := config.InitSentry(cfg)
	if err != nil {
		log.WithError(err).Warn("Sentry disabled")
	} else {
		defer flush()
	}

	if serveMigrate {
		if err := config.Migrate(db); err != nil {
			return err
		}
	}

	storage := middleware.NewRateLimitStorage(cfg.Redis)
	if storage != nil {
		defer storage.Close()
	}

	app := routes.NewApp(db, cfg, log, storage)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Server starting on port %s", cfg.ServerPort)
		errCh <- app.Listen(":" + cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	return app.ShutdownWithTimeout(10 * time.Second)
}
