package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Bryant1523/notasapp/internal/allocation"
	"github.com/Bryant1523/notasapp/internal/config"
	"github.com/Bryant1523/notasapp/internal/events"
	"github.com/Bryant1523/notasapp/internal/events/kafka"
	interfaces "github.com/Bryant1523/notasapp/internal/interfaces"
	"github.com/Bryant1523/notasapp/internal/ledger"
	"github.com/Bryant1523/notasapp/internal/logging"
	"github.com/Bryant1523/notasapp/internal/session"
	"github.com/Bryant1523/notasapp/internal/storage/memory"
	"github.com/Bryant1523/notasapp/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	os.Exit(exitCode(logger, run(cfg, logger)))
}

// exitCode logs a run failure and flushes the logger before the process exits.
func exitCode(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher interfaces.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
		logger.Info("publishing ticket events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("prefix", cfg.KafkaTopicPrefix))
	}

	ledgerService := ledger.NewLedger(store, publisher, logger, cfg.KafkaTopicPrefix)
	engine := allocation.NewEngine(logger)
	svc := session.NewService(engine, ledgerService, cfg.Columns, cfg.Portfolios, cfg.TemplateDir, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(svc, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr), zap.String("env", string(cfg.Env)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.TicketStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using in-memory ticket store")
		return memory.NewMemoryTicketStore(), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	store := postgres.NewPostgresTicketStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info("using postgres ticket store")
	return store, func() { db.Close() }, nil
}
