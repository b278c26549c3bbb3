package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Laziz6066/Tafakkur-test/internal/auth"
	"github.com/Laziz6066/Tafakkur-test/internal/config"
	"github.com/Laziz6066/Tafakkur-test/internal/engine"
	esengine "github.com/Laziz6066/Tafakkur-test/internal/engine/elasticsearch"
	"github.com/Laziz6066/Tafakkur-test/internal/engine/memory"
	"github.com/Laziz6066/Tafakkur-test/internal/event"
	handler "github.com/Laziz6066/Tafakkur-test/internal/handler/http"
	"github.com/Laziz6066/Tafakkur-test/internal/repository/postgres"
	"github.com/Laziz6066/Tafakkur-test/internal/service"
	"github.com/Laziz6066/Tafakkur-test/migrations"
	"github.com/Laziz6066/Tafakkur-test/pkg/database"
	"github.com/Laziz6066/Tafakkur-test/pkg/health"
	pkgkafka "github.com/Laziz6066/Tafakkur-test/pkg/kafka"
	"github.com/Laziz6066/Tafakkur-test/pkg/tracing"
)

// indexerEventTTL bounds how long processed event IDs are remembered for
// consumer-side deduplication.
const indexerEventTTL = 24 * time.Hour

// redisConfigFromAddr splits a host:port address into a RedisConfig.
func redisConfigFromAddr(addr, password string, db int) (database.RedisConfig, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("parse REDIS_ADDR %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return database.RedisConfig{}, fmt.Errorf("parse REDIS_ADDR port %q: %w", portStr, err)
	}
	return database.RedisConfig{
		Host:     host,
		Port:     port,
		Password: password,
		DB:       db,
	}, nil
}

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	consumers      []*pkgkafka.Consumer
	dlq            *pkgkafka.DLQProducer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "catalog",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "catalog")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize the search engine based on configuration.
	var eng engine.SearchEngine
	var esEng *esengine.Engine
	switch cfg.SearchEngine {
	case "elasticsearch":
		esEng, err = esengine.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = esEng
		logger.Info("elasticsearch search engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		eng = memory.New()
		logger.Info("in-memory search engine initialized")
	}

	// Optional Redis cache for suggestions.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisCfg, cfgErr := redisConfigFromAddr(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if cfgErr != nil {
			pool.Close()
			return nil, cfgErr
		}
		redisClient, err = database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			logger.Warn("redis unavailable, suggestion caching disabled",
				slog.String("addr", cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
			redisClient = nil
		} else {
			logger.Info("redis suggestion cache initialized", slog.String("addr", cfg.RedisAddr))
		}
	}

	// Initialize Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	eventProducer := event.NewProducer(producer, logger)

	searchCfg := service.DefaultSearchConfig()
	searchCfg.DefaultPageSize = cfg.PageSize
	searchCfg.MaxPageSize = cfg.MaxPageSize
	searchCfg.DefaultSuggestSize = cfg.SuggestSize
	searchCfg.MaxSuggestSize = cfg.MaxSuggestSize
	searchCfg.SearchTimeout = cfg.SearchTimeout
	searchCfg.SuggestCacheTTL = cfg.SuggestCacheTTL

	catalogService := service.NewCatalogService(categoryRepo, productRepo, eventProducer, logger)
	searchService := service.NewSearchService(eng, productRepo, redisClient, searchCfg, logger)
	authService := service.NewAuthService(userRepo, jwtManager, logger)

	// Index sync consumers, one per topic, sharing a consumer group and a
	// dead letter queue for events that exhaust handler retries.
	var consumers []*pkgkafka.Consumer
	var dlq *pkgkafka.DLQProducer
	if !cfg.KafkaDisabled {
		indexer := event.NewIndexer(eng, productRepo, logger)
		idempotency := pkgkafka.NewMemoryIdempotencyStore(indexerEventTTL)
		handle := indexer.Handler(idempotency)

		dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)

		topics := []string{
			event.TopicProductCreated,
			event.TopicProductUpdated,
			event.TopicProductDeleted,
			event.TopicCategoryUpdated,
			event.TopicCategoryDeleted,
		}
		for _, topic := range topics {
			c := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
				Brokers:  cfg.KafkaBrokers,
				GroupID:  cfg.KafkaGroupID,
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}, handle, logger).WithDLQ(dlq)
			consumers = append(consumers, c)
		}
		logger.Info("kafka index sync consumers initialized",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("group", cfg.KafkaGroupID),
			slog.Int("topic_count", len(topics)),
		)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if esEng != nil {
		healthHandler.RegisterCritical("elasticsearch", esEng.Ping)
	}
	if !cfg.KafkaDisabled {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// HTTP router.
	router := handler.NewRouter(handler.RouterConfig{
		Catalog:       catalogService,
		Search:        searchService,
		Auth:          authService,
		TokenValidate: jwtManager.MiddlewareValidator(),
		Health:        healthHandler,
		PprofCIDRs:    cfg.PprofAllowedCIDRs,
		CORSOrigins:   cfg.CORSAllowedOrigins,
		Environment:   cfg.Environment,
		Logger:        logger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		consumers:      consumers,
		dlq:            dlq,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, blocking until the
// context is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: first drain in-flight
// HTTP requests, then flush tracer spans, then close Kafka and storage.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
