package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"real-estate-web/internal/configs"
	"real-estate-web/internal/core/port"
	"real-estate-web/internal/devserver/events"
	"real-estate-web/internal/devserver/memory"
	postgres_adapter "real-estate-web/internal/devserver/postgres"
	"real-estate-web/internal/devserver/rest"
	"real-estate-web/internal/devserver/token"
	"real-estate-web/pkg/postgres"
	"real-estate-web/pkg/rabbitmq"
	"syscall"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DevServerApp - локальная реализация API бэкенда для разработки клиента.
type DevServerApp struct {
	config    *configs.Config
	dbPool    *pgxpool.Pool
	apiServer *rest.Server

	connManager    *rabbitmq.ConnectionManager
	eventPublisher *rabbitmq.Publisher

	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

func NewDevServerApp() (*DevServerApp, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	baseLogger, fluentClient, err := newLogger(appConfig, "estate-devserver", false)
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})

	// Избранное: PostgreSQL, если задан DATABASE_URL, иначе память процесса.
	var wishlistRepo rest.WishlistRepository = memory.NewWishlistRepository()
	var dbPool *pgxpool.Pool
	if appConfig.DevServer.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		dbPool, err = postgres.NewClient(ctx, postgres.Config{DatabaseURL: appConfig.DevServer.DatabaseURL})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

		pgRepo, err := postgres_adapter.NewPostgresWishlistRepository(dbPool)
		if err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("failed to create postgres wishlist repository: %w", err)
		}
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			appLogger.Error("Failed to prepare wishlist schema", err, nil)
			dbPool.Close()
			return nil, err
		}
		wishlistRepo = pgRepo
	} else {
		appLogger.Info("DATABASE_URL is not set, wishlist is kept in memory.", nil)
	}

	properties := memory.NewPropertyRepository(memory.SeedProperties())
	tokenService, err := token.NewService(appConfig.DevServer.JWTSecret, appConfig.DevServer.TokenTTL)
	if err != nil {
		closePool(dbPool)
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	authStore, err := memory.NewAuthStore(appConfig.DevServer.OTPCode, tokenService)
	if err != nil {
		closePool(dbPool)
		return nil, fmt.Errorf("failed to create auth store: %w", err)
	}
	inquiries := memory.NewInquiryRepository()
	appLogger.Info("All repositories initialized.", nil)

	// Доменные события: только если задан брокер.
	var connManager *rabbitmq.ConnectionManager
	var eventPublisher *rabbitmq.Publisher
	if appConfig.DevServer.RabbitMQURL != "" {
		connManager, eventPublisher, err = newEventPublisher(appConfig, baseLogger)
		if err != nil {
			appLogger.Error("Failed to initialize event publisher", err, nil)
			closePool(dbPool)
			return nil, err
		}
		appLogger.Info("RabbitMQ Event Producer initialized.", port.Fields{"exchange": appConfig.DevServer.EventsExchange})
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handlers := rest.NewHandlers(properties, wishlistRepo, authStore, inquiries)
	if eventPublisher != nil {
		handlers.WithEvents(events.NewEmitter(eventPublisher, "estate-devserver"))
	}
	apiServer := rest.NewServer(rest.ServerConfig{
		Port:           appConfig.DevServer.Port,
		AllowedOrigins: appConfig.DevServer.AllowedOrigins,
		Registry:       registry,
	}, handlers, rest.NewAuthMiddleware(authStore), baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return &DevServerApp{
		config:         appConfig,
		dbPool:         dbPool,
		apiServer:      apiServer,
		connManager:    connManager,
		eventPublisher: eventPublisher,
		fluentClient:   fluentClient,
		logger:         appLogger,
	}, nil
}

// Run запускает сервер и ждет сигнала завершения.
func (a *DevServerApp) Run() error {
	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		if a.eventPublisher != nil {
			if err := a.eventPublisher.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}
		if a.connManager != nil {
			if err := a.connManager.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.DevServer.Port})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
		return nil
	case err := <-serverErrors:
		a.logger.Error("Server failed to start, shutting down", err, nil)
		return err
	}
}

// newEventPublisher подключается к брокеру и объявляет topic-обменник событий.
func newEventPublisher(cfg *configs.Config, baseLogger port.LoggerPort) (*rabbitmq.ConnectionManager, *rabbitmq.Publisher, error) {
	connManager, err := rabbitmq.NewConnectionManager(cfg.DevServer.RabbitMQURL,
		events.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := connManager.GetChannel()
	if err != nil {
		connManager.Close()
		return nil, nil, err
	}

	publisher, err := rabbitmq.NewPublisher(rabbitmq.PublisherConfig{
		ExchangeName:             cfg.DevServer.EventsExchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   events.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, ch)
	if err != nil {
		connManager.Close()
		return nil, nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	return connManager, publisher, nil
}

func closePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}
