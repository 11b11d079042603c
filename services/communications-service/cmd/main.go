package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/globaledge/globaledge/services/communications-service/internal/config"
	"github.com/globaledge/globaledge/services/communications-service/internal/dispatch"
	pkgkafka "github.com/globaledge/globaledge/shared/kafka"
	"github.com/globaledge/globaledge/shared/logger"
	pkgrabbit "github.com/globaledge/globaledge/shared/rabbitmq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}
	log := logger.MustInit("communications-service", cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	// the rabbit connection is closed explicitly after the workers drain
	log.Info("connecting to rabbitmq", zap.String("host", cfg.RabbitMQHost))
	rabbitClient, err := pkgrabbit.NewClient(cfg.GetRabbitMQURL())
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	for _, q := range []string{dispatch.EmailQueue, dispatch.SMSQueue} {
		if err := rabbitClient.CreateQueue(q); err != nil {
			log.Fatal("failed to declare queue", zap.String("queue", q), zap.Error(err))
		}
	}
	if err := rabbitClient.Prefetch(cfg.Prefetch); err != nil {
		log.Fatal("failed to set prefetch", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := dispatch.LogSender{Logger: log}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatch.NewEmailWorker(rabbitClient, sender, log).Run(gctx) })
	g.Go(func() error { return dispatch.NewSMSWorker(rabbitClient, sender, log).Run(gctx) })

	var consumer *pkgkafka.Consumer
	if cfg.HasKafka() {
		log.Info("bridging kafka events", zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
		consumer = pkgkafka.NewConsumer([]string{cfg.KafkaBroker}, cfg.KafkaTopic, cfg.ConsumerGroup, log)
		bridge := dispatch.NewBridge(rabbitClient, cfg.SupportEmail, log)
		g.Go(func() error {
			consumer.Start(gctx, bridge.Handle)
			return nil
		})
	} else {
		log.Warn("kafka config missing, only queued jobs will be processed")
	}

	log.Info("communications service running")
	if err := g.Wait(); err != nil {
		log.Error("worker stopped with error", zap.Error(err))
	}

	log.Info("closing connections")
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Warn("failed to close kafka consumer", zap.Error(err))
		}
	}
	if err := rabbitClient.Close(); err != nil {
		log.Error("failed to close rabbitmq connection", zap.Error(err))
	}
	log.Info("communications service stopped")
}
