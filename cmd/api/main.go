package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/app"
	"github.com/suiscan-ai/suiscan/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	log.Info("SUIscan API is running; DB connected and bootstrapped.")
	if err := application.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Info("shutdown complete")
}
