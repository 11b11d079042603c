package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/globaledge/globaledge/services/shipment-service/config"
	grpcServer "github.com/globaledge/globaledge/services/shipment-service/handler/grpc"
	"github.com/globaledge/globaledge/services/shipment-service/handler/rest"
	"github.com/globaledge/globaledge/services/shipment-service/internal/crypto"
	"github.com/globaledge/globaledge/services/shipment-service/internal/geo"
	"github.com/globaledge/globaledge/services/shipment-service/internal/media"
	"github.com/globaledge/globaledge/services/shipment-service/internal/observability"
	"github.com/globaledge/globaledge/services/shipment-service/payment"
	"github.com/globaledge/globaledge/services/shipment-service/service"
	"github.com/globaledge/globaledge/services/shipment-service/store"
	pkgkafka "github.com/globaledge/globaledge/shared/kafka"
	"github.com/globaledge/globaledge/shared/logger"
)

const draftSweepInterval = time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}
	log := logger.MustInit("shipment-service", cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]rest.HealthCheck{}

	// =========================================================================
	// STORAGE
	// =========================================================================
	var shipments store.ShipmentStore
	if cfg.HasDatabase() {
		pg, err := store.NewPostgresStore(ctx, cfg.GetDBURL())
		if err != nil {
			log.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pg.Close()
		shipments = pg
		checks["postgres"] = pg.Ping
		log.Info("shipments stored in postgres", zap.String("host", cfg.DBHost))
	} else {
		shipments = store.NewMemoryStore()
		log.Warn("DB_HOST not set, shipments are kept in memory")
	}

	var drafts store.DraftStore
	if cfg.HasRedis() {
		rd, err := store.NewRedisDraftStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rd.Close()
		drafts = rd
		checks["redis"] = rd.Ping
	} else {
		mem := store.NewMemoryDraftStore()
		go mem.RunSweeper(ctx, draftSweepInterval)
		drafts = mem
		log.Warn("REDIS_ADDR not set, drafts are kept in memory")
	}

	// =========================================================================
	// EVENTS, PAYMENTS, MEDIA, GEOCODING
	// =========================================================================
	var events pkgkafka.Publisher = pkgkafka.NopPublisher{Logger: log}
	if cfg.HasKafka() {
		producer := pkgkafka.NewKafkaProducer(cfg.KafkaBroker, cfg.KafkaTopic, log)
		defer producer.Close()
		events = producer
		log.Info("publishing events to kafka", zap.String("topic", cfg.KafkaTopic))
	} else {
		log.Warn("KAFKA_BROKER not set, events will be dropped")
	}

	var gateway payment.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		gateway = payment.NewSimulatedGateway()
		log.Warn("STRIPE_SECRET_KEY not set, using the simulated payment gateway")
	}

	var uploader media.Uploader
	if cfg.CloudinaryURL != "" {
		up, err := media.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			log.Fatal("failed to configure cloudinary", zap.Error(err))
		}
		uploader = up
	}

	table, err := geo.NewTable()
	if err != nil {
		log.Fatal("failed to load city table", zap.Error(err))
	}
	geocoders := geo.Chain{table}
	if cfg.GeocoderURL != "" {
		geocoders = geo.Chain{geo.NewHTTPGeocoder(cfg.GeocoderURL), table}
	}
	resolver := geo.NewResolver(geocoders, log)

	// =========================================================================
	// BOOKING
	// =========================================================================
	var booker service.Booker
	useTemporal := cfg.HasTemporal() && cfg.HasDatabase() && cfg.HasRedis()
	if cfg.HasTemporal() && !useTemporal {
		log.Warn("temporal ignored: the booking worker needs shared postgres and redis stores")
	}
	if useTemporal {
		tc, err := client.Dial(client.Options{HostPort: cfg.TemporalHostPort})
		if err != nil {
			log.Fatal("failed to create temporal client", zap.Error(err))
		}
		defer tc.Close()
		booker = service.NewTemporalBooker(tc, cfg.TemporalTaskQueue)
		log.Info("bookings run on temporal", zap.String("task_queue", cfg.TemporalTaskQueue))
	} else {
		booker = service.NewLocalBooker(&service.Steps{
			Drafts:    drafts,
			Shipments: shipments,
			Gateway:   gateway,
			Events:    events,
		}, log)
	}

	metrics, err := observability.NewMetrics(nil)
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	quotes := service.NewQuoteService(metrics)
	tracking := service.NewTrackingService(shipments, resolver)
	bookings := service.NewBookingService(service.BookingDeps{
		Drafts:    drafts,
		Shipments: shipments,
		Booker:    booker,
		Uploader:  uploader,
		Events:    events,
		Metrics:   metrics,
		Logger:    log,
		DraftTTL:  cfg.DraftTTL,
	})

	if cfg.AdminTokenHash == "" {
		log.Warn("ADMIN_TOKEN_HASH not set, admin endpoints will reject every request")
	}

	// =========================================================================
	// TRANSPORTS
	// =========================================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := rest.NewRouter(rest.Deps{
		Quotes:          quotes,
		Bookings:        bookings,
		Shipments:       service.NewShipmentService(shipments, events, log),
		Tracking:        tracking,
		Hasher:          crypto.NewArgon2Hasher(crypto.DefaultParams),
		AdminTokenHash:  cfg.AdminTokenHash,
		Metrics:         metrics,
		Checks:          checks,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          log,
	})
	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryServerInterceptor()))
	grpcServer.Register(gs, grpcServer.NewQuoteServer(quotes, tracking, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return err
		}
		log.Info("grpc server listening", zap.String("addr", lis.Addr().String()))
		return gs.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		gs.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return
	}
	log.Info("shipment service stopped")
}
