package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecomshop/order-engine/internal/cache"
	"github.com/ecomshop/order-engine/internal/db"
	"github.com/ecomshop/order-engine/internal/engine"
	"github.com/ecomshop/order-engine/internal/kafka"
	"github.com/ecomshop/order-engine/internal/logger"
	"github.com/ecomshop/order-engine/internal/outbox"
	"github.com/ecomshop/order-engine/internal/repository/postgresql"
	"github.com/ecomshop/order-engine/internal/server"
)

const defaultPort = "9000"

func main() {
	log := logger.New()
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbPool, err := db.NewDb(ctx)
	if err != nil {
		log.Fatal("database init error", zap.Error(err))
	}
	defer dbPool.GetPool().Close()

	if err := db.InitAdmin(ctx, dbPool); err != nil {
		log.Fatal("failed to init admin user", zap.Error(err))
	}

	orderRepo := postgresql.NewOrderRepo(dbPool)
	itemRepo := postgresql.NewOrderItemRepo(dbPool)
	productRepo := postgresql.NewProductRepo(dbPool)
	userRepo := postgresql.NewUserRepo(dbPool)
	outboxRepo := postgresql.NewOutboxTaskRepo(dbPool)

	orderCache := cache.NewOrderCache(orderRepo, log)
	if err := orderCache.LoadInitialData(ctx); err != nil {
		log.Fatal("failed to warm order cache", zap.Error(err))
	}

	eng := engine.New(dbPool, orderRepo, itemRepo, productRepo, userRepo, outboxRepo, orderCache, log)

	producer := kafka.NewKafkaProducer(kafkaBrokers(), log)
	publisher := outbox.NewPublisher(outboxRepo, producer, outbox.PublisherConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	}, log)

	srv := server.New(eng, userRepo, log)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		publisher.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		return srv.Run(httpPort())
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		publisher.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal("shutdown failed", zap.Error(err))
	}
	log.Info("stopped")
}

func httpPort() string {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		return port
	}
	return defaultPort
}

func kafkaBrokers() []string {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}
	return strings.Split(brokers, ",")
}
