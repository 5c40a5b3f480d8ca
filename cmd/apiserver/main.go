// Command apiserver serves the follow-up REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/turtacn/followup-compliance/internal/bootstrap"
	"github.com/turtacn/followup-compliance/internal/config"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/followup-compliance/internal/interfaces/http"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: FOLLOWUP_* environment only)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(cfg.Log, "")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting follow-up API server",
		logging.String("version", version),
		logging.String("addr", cfg.Server.Addr()),
		logging.Bool("mock_data", cfg.App.UseMockData),
		logging.String("timezone", cfg.Scheduler.Timezone))

	c, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", logging.Err(err))
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("close failed", logging.Err(err))
		}
	}()

	if configPath != "" {
		err := config.Watch(configPath, func(next *config.Config) {
			logger.Info("configuration file changed; restart to apply",
				logging.Int("grace_days", next.Scheduler.GraceDays))
		}, func(err error) {
			logger.Warn("configuration reload failed", logging.Err(err))
		})
		if err != nil {
			logger.Warn("config watch disabled", logging.Err(err))
		}
	}

	router, err := c.Router(version)
	if err != nil {
		return err
	}
	srv := httpserver.NewServer(cfg.Server, router, logger.Named("http"))
	return srv.Run(ctx)
}
