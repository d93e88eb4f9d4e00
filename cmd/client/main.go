package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/jobcoach/internal/buildinfo"
	"github.com/dmitrijs2005/jobcoach/internal/client/app"
	"github.com/dmitrijs2005/jobcoach/internal/client/cli"
	"github.com/dmitrijs2005/jobcoach/internal/client/config"
	"github.com/dmitrijs2005/jobcoach/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	if _, err := core.Start(ctx); err != nil {
		logger.Error(ctx, "startup aborted", "error", err)
		return
	}

	cli.NewApp(core, os.Stdin, os.Stdout).Run(ctx)

}
