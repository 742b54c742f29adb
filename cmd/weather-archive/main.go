package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/i474232898/weather-archive/internal/config"
	mylog "github.com/i474232898/weather-archive/internal/log"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	mylog.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(cfg).Run(ctx, os.Args); err != nil {
		log.WithError(err).Error("command failed")
		return 2
	}
	return 0
}

func newApp(cfg *config.AppConfig) *cli.Command {
	return &cli.Command{
		Name:  "weather-archive",
		Usage: "Long-run annual temperature and precipitation charts",
		Commands: []*cli.Command{
			serveCommand(cfg),
			renderCommand(cfg),
			seriesCommand(cfg),
			warmCommand(cfg),
		},
	}
}
