package main

import (
	"context"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"github.com/globaledge/globaledge/services/shipment-service/payment"
	"github.com/globaledge/globaledge/services/shipment-service/service"
	"github.com/globaledge/globaledge/services/shipment-service/store"
	"github.com/globaledge/globaledge/services/workflow-orchestrator/internal/activities"
	bookingflow "github.com/globaledge/globaledge/services/workflow-orchestrator/internal/workflow"
	"github.com/globaledge/globaledge/shared/config"
	pkgkafka "github.com/globaledge/globaledge/shared/kafka"
	"github.com/globaledge/globaledge/shared/logger"
)

func main() {
	// =========================================================================
	// 1. LOAD CONFIG
	// =========================================================================
	cfg, err := config.LoadCommonConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}
	log := logger.MustInit("workflow-orchestrator", cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if !cfg.HasTemporal() || !cfg.HasDatabase() || !cfg.HasRedis() {
		// the worker shares state with the shipment service, so in-memory stores would diverge
		log.Fatal("TEMPORAL_HOST_PORT, DB_HOST/DB_NAME and REDIS_ADDR are required")
	}
	ctx := context.Background()

	// =========================================================================
	// 2. SETUP DEPENDENCIES (DB, REDIS, KAFKA, PAYMENTS)
	// =========================================================================
	shipments, err := store.NewPostgresStore(ctx, cfg.GetDBURL())
	if err != nil {
		log.Fatal("worker failed to connect to postgres", zap.Error(err))
	}
	defer shipments.Close()

	drafts, err := store.NewRedisDraftStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("worker failed to connect to redis", zap.Error(err))
	}
	defer drafts.Close()

	var producer pkgkafka.Publisher = pkgkafka.NopPublisher{Logger: log}
	if cfg.HasKafka() {
		kp := pkgkafka.NewKafkaProducer(cfg.KafkaBroker, cfg.KafkaTopic, log)
		defer kp.Close()
		producer = kp
	} else {
		log.Warn("kafka config missing, worker will not publish events")
	}

	var gateway payment.Gateway = payment.NewSimulatedGateway()
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		gateway = payment.NewStripeGateway(key)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, using the simulated payment gateway")
	}

	// =========================================================================
	// 3. SETUP TEMPORAL CLIENT
	// =========================================================================
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalHostPort})
	if err != nil {
		log.Fatal("unable to create temporal client", zap.Error(err))
	}
	defer c.Close()
	log.Info("worker connected to temporal", zap.String("host", cfg.TemporalHostPort))

	// =========================================================================
	// 4. REGISTER ACTIVITIES & WORKFLOWS
	// =========================================================================
	acts := &activities.BookingActivities{Steps: &service.Steps{
		Drafts:    drafts,
		Shipments: shipments,
		Gateway:   gateway,
		Events:    producer,
	}}

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(bookingflow.ConfirmBookingWorkflow, workflow.RegisterOptions{
		Name: service.ConfirmBookingWorkflowName,
	})
	w.RegisterActivity(acts)

	// =========================================================================
	// 5. START WORKER
	// =========================================================================
	log.Info("worker started", zap.String("task_queue", cfg.TemporalTaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("unable to start worker", zap.Error(err))
	}
}
