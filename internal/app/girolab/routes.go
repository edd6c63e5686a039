// Package girolab предоставляет маршруты для основного приложения.
package girolab

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/girolab/backend/internal/http/handlers/auth/login"
	"github.com/girolab/backend/internal/http/handlers/auth/register"
	featurecheck "github.com/girolab/backend/internal/http/handlers/feature/check"
	featureconsume "github.com/girolab/backend/internal/http/handlers/feature/consume"
	girocreate "github.com/girolab/backend/internal/http/handlers/giro/create"
	girolist "github.com/girolab/backend/internal/http/handlers/giro/list"
	girosummary "github.com/girolab/backend/internal/http/handlers/giro/summary"
	"github.com/girolab/backend/internal/http/handlers/health"
	scenariofavorites "github.com/girolab/backend/internal/http/handlers/scenario/favorites"
	scenariosync "github.com/girolab/backend/internal/http/handlers/scenario/sync"
	taxestimate "github.com/girolab/backend/internal/http/handlers/tax/estimate"
	taxgenerate "github.com/girolab/backend/internal/http/handlers/tax/generate"
	taxlist "github.com/girolab/backend/internal/http/handlers/tax/list"
	taxmarkpaid "github.com/girolab/backend/internal/http/handlers/tax/markpaid"
	"github.com/girolab/backend/internal/http/middlewarectx"
	"github.com/girolab/backend/internal/lib/jwt"
	authservice "github.com/girolab/backend/internal/services/auth"
	entitlementservice "github.com/girolab/backend/internal/services/entitlement"
	ledgerservice "github.com/girolab/backend/internal/services/ledger"
	scenarioservice "github.com/girolab/backend/internal/services/scenario"
	taxservice "github.com/girolab/backend/internal/services/tax"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker jwt.Maker,
	authService *authservice.Service,
	ledgerService *ledgerservice.Service,
	entitlementService *entitlementservice.Service,
	taxService *taxservice.Service,
	scenarioService *scenarioservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Post("/giros", girocreate.New(logger, ledgerService).ServeHTTP)
			r.Get("/giros/list", girolist.New(logger, ledgerService).ServeHTTP)
			r.Get("/giros/summary", girosummary.New(logger, ledgerService).ServeHTTP)

			r.Get("/features/{key}", featurecheck.New(logger, entitlementService).ServeHTTP)
			r.Post("/features/{key}/consume", featureconsume.New(logger, entitlementService).ServeHTTP)

			r.Get("/tax/estimate", taxestimate.New(logger, taxService).ServeHTTP)
			r.Post("/tax/reports", taxgenerate.New(logger, taxService, entitlementService).ServeHTTP)
			r.Get("/tax/reports/list", taxlist.New(logger, taxService).ServeHTTP)
			r.Post("/tax/reports/{id}/paid", taxmarkpaid.New(logger, taxService).ServeHTTP)

			r.Get("/scenarios/favorites", scenariofavorites.New(logger, scenarioService).ServeHTTP)
			r.Put("/scenarios/favorites", scenariosync.New(logger, scenarioService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
