package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/handlers"
	customerrepo "github.com/Ramsey-B/clover/internal/repositories/customer"
	incomingrepo "github.com/Ramsey-B/clover/internal/repositories/incomingcustomer"
	matchrepo "github.com/Ramsey-B/clover/internal/repositories/matchresult"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/embedding"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/logging"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/middleware"
	"github.com/Ramsey-B/clover/pkg/processor"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// version is stamped at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments inject environment directly
	_ = godotenv.Load()

	var cfg config.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}

	logger, flush, err := logging.New(cfg.PrettyLogs)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Service exited with error")
		os.Exit(1)
	}
}

func run(cfg config.Config, logger ectologger.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := tracing.InitProvider(cfg.AppName)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(ctx) }()

	db, err := database.Connect(database.Config{
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	driver, err := postgres.WithInstance(db.SQLDB(), &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	// Embedding chain: OpenAI behind a Redis cache
	openaiEmbedder := embedding.NewOpenAIEmbedder(embedding.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	}, logger)
	cachedEmbedder := embedding.NewCachedEmbedder(openaiEmbedder, redisClient, cfg.EmbeddingModel, cfg.EmbeddingTTL, logger)
	embedService := embedding.NewService(logger, cachedEmbedder)

	customerRepo := customerrepo.NewRepository(db, logger)
	incomingRepo := incomingrepo.NewRepository(db, logger)
	matchResultRepo := matchrepo.NewRepository(db, logger)

	matchCfg := matching.Config{
		ExactCompanyWeight: cfg.ExactCompanyWeight,
		ExactEmailWeight:   cfg.ExactEmailWeight,
		ExactPhoneWeight:   cfg.ExactPhoneWeight,
		ExactMinScore:      cfg.ExactMinScore,
		VectorThreshold:    cfg.VectorThreshold,
		VectorLimit:        cfg.VectorLimit,
		FuzzyThreshold:     cfg.FuzzyThreshold,
		FuzzyLimit:         cfg.FuzzyLimit,
		Tiers: matching.TierTable{
			Exact:          cfg.TierExact,
			HighConfidence: cfg.TierHighConfidence,
			Potential:      cfg.TierPotential,
		},
		IndustryBoost:       cfg.IndustryBoost,
		CityBoost:           cfg.CityBoost,
		CountryPenalty:      cfg.CountryPenalty,
		RevenueBoost:        cfg.RevenueBoost,
		RevenueRatioMin:     cfg.RevenueRatioMin,
		RevenueBoostEnabled: cfg.RevenueBoostEnabled,
	}

	matcher := matching.NewService(logger, db, customerRepo, incomingRepo, matchResultRepo, matchCfg)

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaOutputTopic,
		BatchSize:    cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: cfg.KafkaRequiredAcks,
		Compression:  cfg.KafkaCompression,
	}, logger)
	defer producer.Close()

	emitter := events.NewEmitter(producer, logger)
	proc := processor.NewProcessor(logger, incomingRepo, embedService, matcher, emitter)

	var consumer *kafka.Consumer
	if cfg.KafkaConsumerEnabled {
		consumer = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaInputTopic,
			ConsumerGroup: cfg.KafkaConsumerGroup,
		}, logger, proc.ProcessMessage)
		if err := consumer.Start(ctx); err != nil {
			return fmt.Errorf("start kafka consumer: %w", err)
		}
		defer func() { _ = consumer.Stop() }()
	}

	var worker *processor.Worker
	if cfg.WorkerEnabled {
		worker = processor.NewWorker(logger, proc, incomingRepo, processor.WorkerConfig{
			PollInterval: cfg.WorkerPollInterval,
			Concurrency:  cfg.WorkerConcurrency,
			BatchSize:    cfg.WorkerBatchSize,
		})
		if err := worker.Start(ctx); err != nil {
			return fmt.Errorf("start background worker: %w", err)
		}
		defer func() { _ = worker.Stop() }()
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Pass a nil interface, not a typed nil pointer, when the consumer is
	// disabled so the health checker skips the check.
	var consumerHealth interface{ Health() bool }
	if consumer != nil {
		consumerHealth = consumer
	}

	health := handlers.NewHealthChecker(db, redisClient, consumerHealth, version)
	health.RegisterRoutes(e)

	api := e.Group("/api/v1")
	handlers.NewCustomerHandler(logger, customerRepo, embedService).RegisterRoutes(api)
	handlers.NewIncomingHandler(logger, incomingRepo, matchResultRepo, matcher, proc).RegisterRoutes(api)
	handlers.NewMatchResultHandler(logger, matchResultRepo).RegisterRoutes(api)
	handlers.NewDisplayHandler(matchResultRepo, incomingRepo, customerRepo).RegisterRoutes(api)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           e,
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting %s on port %d", cfg.AppName, cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	health.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		logger.Infof("Received signal %s, shutting down", sig)
	}

	health.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
