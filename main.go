package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"Gin_postgres_redis_record_loans/app"
	"Gin_postgres_redis_record_loans/clock"
	"Gin_postgres_redis_record_loans/config"
	"Gin_postgres_redis_record_loans/db"
	"Gin_postgres_redis_record_loans/routes"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	config.LoadEnv()

	cliApp := &cli.App{
		Name:  "record-loans",
		Usage: "physical record lending service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "migrate the schema and serve the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the schema and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}
	if err := cliApp.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("record-loans")
	}
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, config.NewLogger(cfg), nil
}

func migrate(_ *cli.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	conn, err := db.ConnectDB(cfg.DSN(), clock.NewSystem(), log)
	if err != nil {
		return err
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	log.Info("schema migrated")
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	application, err := app.Open(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	routes.RegisterRoutes(application.Router, application)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: application.Router,
	}
	log.WithField("port", cfg.Port).Info("listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
	case <-stopCtx.Done():
		log.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Warn("server shutdown")
	}
	log.Info("server stopped")
	return nil
}
