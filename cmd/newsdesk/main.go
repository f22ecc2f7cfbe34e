package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/theeverestnews/newsdesk/internal/cli"
	"github.com/theeverestnews/newsdesk/internal/config"
	"github.com/theeverestnews/newsdesk/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}

func newLogger(cfg *config.Config) (logging.Logger, error) {
	if cfg.LogFormat == "json" {
		zl, err := zap.NewProduction()
		if err != nil {
			return nil, err
		}
		return logging.NewZapLogger(zl), nil
	}
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))), nil
}
