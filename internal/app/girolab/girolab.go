// Package girolab собирает основное приложение: хранилище, кэш, шину событий,
// сервисы и HTTP-сервер.
package girolab

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/girolab/backend/internal/cache"
	"github.com/girolab/backend/internal/config"
	"github.com/girolab/backend/internal/lib/jwt"
	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/migrations"
	"github.com/girolab/backend/internal/rabbitmq"
	authservice "github.com/girolab/backend/internal/services/auth"
	entitlementservice "github.com/girolab/backend/internal/services/entitlement"
	ledgerservice "github.com/girolab/backend/internal/services/ledger"
	scenarioservice "github.com/girolab/backend/internal/services/scenario"
	taxservice "github.com/girolab/backend/internal/services/tax"
	"github.com/girolab/backend/internal/storage/repository"
)

type App struct {
	server      *http.Server
	logger      *slog.Logger
	db          *repository.Storage
	amqpConn    *amqp.Connection
	entitlement *entitlementservice.Service
	refresh     time.Duration
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Шина событий опциональна: без AMQP_URL отчёты создаются,
	// но события не публикуются.
	var amqpConn *amqp.Connection
	var publisher *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		amqpConn, err = rabbitmq.Connect(cfg.AMQPURL, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(amqpConn, cfg.Exchange, []rabbitmq.QueueConfig{
			{QueueName: cfg.ReportsQueue, RoutingKey: cfg.RoutingKey},
		})
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch, cfg.Exchange)
	} else {
		logger.Warn("AMQP_URL is empty, report events will not be published")
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	ledgerService := ledgerservice.New(db, logger)
	entitlementService := entitlementservice.New(db, cacheRedis, logger)
	taxService := taxservice.New(db, taxPublisher(publisher), cfg.RoutingKey, logger)
	scenarioService := scenarioservice.New(db, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker,
		authService, ledgerService, entitlementService, taxService, scenarioService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:      srv,
		logger:      logger,
		db:          db,
		amqpConn:    amqpConn,
		entitlement: entitlementService,
		refresh:     cfg.RefreshInterval,
	}, nil
}

// taxPublisher превращает nil *Publisher в nil-интерфейс,
// чтобы сервис корректно распознал отсутствие шины.
func taxPublisher(p *rabbitmq.Publisher) taxservice.Publisher {
	if p == nil {
		return nil
	}
	return p
}

func (a *App) Run(ctx context.Context) error {
	go a.entitlement.RunRefresh(ctx, a.refresh)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		if a.amqpConn != nil {
			if closeErr := a.amqpConn.Close(); closeErr != nil {
				a.logger.Error("failed to close amqp connection", sl.Err(closeErr))
			}
		}
		return err
	}
}
