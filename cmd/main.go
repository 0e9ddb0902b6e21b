package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"

	"github.com/orgball2608/stories-engine/internal/app"
	"github.com/orgball2608/stories-engine/pkg/logger"
)

func main() {
	log := logger.New(logger.Opts{})

	engine := fx.New(
		fx.Logger(log),
		app.Module,
	)

	if err := engine.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if err := engine.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}
