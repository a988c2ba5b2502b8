package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/restaurant-mitake/printer-agent/adapter"
	"github.com/restaurant-mitake/printer-agent/agent"
	"github.com/restaurant-mitake/printer-agent/config"
	"github.com/restaurant-mitake/printer-agent/dispatch"
	"github.com/restaurant-mitake/printer-agent/store"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		logger.Info(".env file not found, using process environment")
	} else {
		logger.Info(".env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}
	if cfg.Mode == config.ModeMock {
		logger.Infof("mock mode active, tickets go to the console and %s", cfg.MockTranscript)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Error("cannot reach orders database")
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to orders database")

	orders := store.NewPostgres(db, logger)
	source := store.NewSource(orders, logger, cfg.PollInterval, cfg.PollErrorBackoff)

	cashier := dispatch.New("caisse", buildAdapter(cfg, cfg.Cashier, logger),
		cfg.RetryAttempts, cfg.RetryDelay, cfg.Mode == config.ModeMock, logger)
	kitchen := dispatch.New("cuisine", buildAdapter(cfg, cfg.Kitchen, logger),
		cfg.RetryAttempts, cfg.RetryDelay, cfg.Mode == config.ModeMock, logger)

	a := agent.New(orders, source, cashier, kitchen, logger)
	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("agent stopped")
		os.Exit(1)
	}
	logger.Info("printing agent stopped")
}

// buildAdapter picks the transport for a destination. Mock mode substitutes
// the simulated printer for every destination regardless of its kind.
func buildAdapter(cfg *config.Config, p config.Printer, logger *logrus.Logger) adapter.Adapter {
	if cfg.Mode == config.ModeMock {
		return adapter.NewMock(p.Name, cfg.MockTranscript)
	}
	switch p.Kind {
	case config.KindUSB:
		return adapter.NewUSB(p.VendorID, p.ProductID, logger)
	case config.KindOSQueue:
		return adapter.NewOSQueue(p.Name)
	default:
		return adapter.NewNetwork(p.Host, p.Port)
	}
}
