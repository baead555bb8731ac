// Package main is the entry point for the Migoculto notification worker.
// It consumes the asynq queue fed by the API server and delivers
// notifications through the configured gateway.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/caiofrota/migoculto/internal/config"
	"github.com/caiofrota/migoculto/internal/database"
	"github.com/caiofrota/migoculto/internal/worker"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// The worker reads recipient records straight from the database.
	if err := database.Connect(&database.Config{URL: cfg.DatabaseURL}); err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	events := worker.NewEventHandler(worker.LogGateway{})
	srv := worker.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		events,
		logrus.StandardLogger(),
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		srv.Shutdown()
	}()

	srv.Start()
}
